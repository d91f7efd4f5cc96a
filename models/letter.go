package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Letter status constants
const (
	LetterStatusPending       = "en_attente_validation"
	LetterStatusValidated     = "valide"
	LetterStatusModifiedReady = "modifie_pret"
	LetterStatusSent          = "envoye"
	LetterStatusRejected      = "rejete"
)

// Letter type codes
const (
	LetterTypeInternalComplaint = "reclamation_interne"
	LetterTypeMediation         = "mediation"
	LetterTypeFormalNotice      = "mise_en_demeure"
)

// letterTransitions lists the statuses reachable from each status
var letterTransitions = map[string][]string{
	LetterStatusPending:       {LetterStatusValidated, LetterStatusModifiedReady, LetterStatusRejected},
	LetterStatusValidated:     {LetterStatusSent, LetterStatusModifiedReady, LetterStatusRejected},
	LetterStatusModifiedReady: {LetterStatusSent, LetterStatusValidated, LetterStatusRejected},
}

// Letter is a dispute letter draft ("courrier projet") attached to a case
type Letter struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"column:dossier_id;type:uuid;not null;index" json:"dossier_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"dossier,omitempty"`

	LetterType string  `gorm:"column:type_courrier;not null" json:"type_courrier"`
	TemplateID *string `gorm:"column:modele_id;type:uuid" json:"modele_id,omitempty"`

	// Content
	GeneratedContent string  `gorm:"column:contenu_genere;type:text;not null" json:"contenu_genere"`
	FinalContent     *string `gorm:"column:contenu_final;type:text" json:"contenu_final,omitempty"`

	// Generation metadata
	GeneratedByAI bool   `gorm:"column:genere_par_ia;not null;default:false" json:"genere_par_ia"`
	Provider      string `gorm:"column:fournisseur_ia" json:"fournisseur_ia,omitempty"`
	Model         string `gorm:"column:modele_ia" json:"modele_ia,omitempty"`

	Status string `gorm:"column:statut;not null;default:en_attente_validation;index" json:"statut"`

	// Review
	ValidatedByID   *string    `gorm:"column:valide_par;type:uuid" json:"valide_par,omitempty"`
	ValidatedAt     *time.Time `gorm:"column:valide_le" json:"valide_le,omitempty"`
	RejectionReason *string    `gorm:"column:motif_rejet;type:text" json:"motif_rejet,omitempty"`

	// Dispatch
	SentAt         *time.Time `gorm:"column:envoye_le" json:"envoye_le,omitempty"`
	TrackingNumber *string    `gorm:"column:numero_suivi" json:"numero_suivi,omitempty"`
	PostageCost    *float64   `gorm:"column:cout_envoi" json:"cout_envoi,omitempty"`
}

// BeforeCreate hook to generate UUID and default status
func (l *Letter) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LetterStatusPending
	}
	return nil
}

// TableName specifies the table name for Letter model
func (Letter) TableName() string {
	return "courriers_projets"
}

// EffectiveContent returns the admin-edited version when present
func (l *Letter) EffectiveContent() string {
	if l.FinalContent != nil && *l.FinalContent != "" {
		return *l.FinalContent
	}
	return l.GeneratedContent
}

// CanTransitionTo reports whether the letter may move to the given status
func (l *Letter) CanTransitionTo(status string) bool {
	for _, next := range letterTransitions[l.Status] {
		if next == status {
			return true
		}
	}
	return false
}

// IsValidLetterType checks if the letter type is one of the generated kinds
func IsValidLetterType(t string) bool {
	switch t {
	case LetterTypeInternalComplaint, LetterTypeMediation, LetterTypeFormalNotice:
		return true
	}
	return false
}
