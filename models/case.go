package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusNew        = "nouveau"
	CaseStatusInProgress = "en_cours"
	CaseStatusClaimSent  = "reclamation_envoyee"
	CaseStatusMediation  = "mediation"
	CaseStatusClosed     = "cloture"
)

// Case represents a claim dispute ("dossier") filed by a client
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Owner (auth user id, also the profile id)
	UserID string   `gorm:"type:uuid;not null;index" json:"user_id"`
	Client *Profile `gorm:"foreignKey:UserID" json:"client,omitempty"`

	// Insurance
	InsurerName  string `gorm:"column:compagnie_assurance;not null" json:"compagnie_assurance"`
	PolicyNumber string `gorm:"column:numero_police;not null" json:"numero_police"`
	ClaimType    string `gorm:"column:type_sinistre;not null;index" json:"type_sinistre"`

	// Claim facts
	IncidentDate  *time.Time `gorm:"column:date_sinistre" json:"date_sinistre,omitempty"`
	RefusalDate   *time.Time `gorm:"column:date_refus" json:"date_refus,omitempty"`
	RefusedAmount *float64   `gorm:"column:montant_refuse" json:"montant_refuse,omitempty"`
	RefusalReason *string    `gorm:"column:motif_refus;type:text" json:"motif_refus,omitempty"`
	Description   string     `gorm:"type:text" json:"description"`

	Status string `gorm:"column:statut;not null;default:nouveau;index" json:"statut"`

	// Relationships
	Documents []Document `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
	Letters   []Letter   `gorm:"foreignKey:CaseID" json:"courriers,omitempty"`
	Deadlines []Deadline `gorm:"foreignKey:CaseID" json:"echeances,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:CaseID" json:"paiements,omitempty"`
}

// BeforeCreate hook to generate UUID and default status
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = CaseStatusNew
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "dossiers"
}

// IsEditableByOwner reports whether the client may still edit the case
func (c *Case) IsEditableByOwner() bool {
	return c.Status == CaseStatusNew
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusNew, CaseStatusInProgress, CaseStatusClaimSent, CaseStatusMediation, CaseStatusClosed:
		return true
	}
	return false
}
