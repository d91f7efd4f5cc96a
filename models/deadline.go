package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deadline status constants
const (
	DeadlineStatusActive  = "active"
	DeadlineStatusHandled = "traitee"
	DeadlineStatusExpired = "expiree"
)

// Deadline is a legal or regulatory date ("échéance") tied to a case
type Deadline struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"column:dossier_id;type:uuid;not null;index" json:"dossier_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"dossier,omitempty"`

	Title       string  `gorm:"column:titre;not null" json:"titre"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	DueDate     time.Time  `gorm:"column:date_echeance;not null;index" json:"date_echeance"`
	AlertDate   time.Time  `gorm:"column:date_alerte;not null;index" json:"date_alerte"`
	AlertSentAt *time.Time `gorm:"column:alerte_envoyee_le" json:"alerte_envoyee_le,omitempty"`

	Status string `gorm:"column:statut;not null;default:active;index" json:"statut"`
}

// BeforeCreate hook to generate UUID and default status
func (d *Deadline) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Status == "" {
		d.Status = DeadlineStatusActive
	}
	return nil
}

// TableName specifies the table name for Deadline model
func (Deadline) TableName() string {
	return "echeances"
}

// IsOverdue reports whether an active deadline is past its due date
func (d *Deadline) IsOverdue(now time.Time) bool {
	return d.Status == DeadlineStatusActive && now.After(d.DueDate)
}

// NeedsAlert reports whether the alert date is reached and no alert was sent yet
func (d *Deadline) NeedsAlert(now time.Time) bool {
	return d.Status == DeadlineStatusActive && d.AlertSentAt == nil && !now.Before(d.AlertDate)
}

// IsValidDeadlineStatus checks if the status is valid
func IsValidDeadlineStatus(status string) bool {
	return status == DeadlineStatusActive || status == DeadlineStatusHandled || status == DeadlineStatusExpired
}
