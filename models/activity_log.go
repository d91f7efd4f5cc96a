package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity actions recorded for end users
const (
	ActivityCaseCreated      = "dossier_cree"
	ActivityCaseUpdated      = "dossier_modifie"
	ActivityDocumentUploaded = "document_ajoute"
	ActivityDocumentDeleted  = "document_supprime"
	ActivityPaymentUpdated   = "paiement_mis_a_jour"
	ActivityLetterCreated    = "courrier_cree"
)

// ActivityLog records a user-facing action on a case
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID  *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CaseID  *string `gorm:"column:dossier_id;type:uuid;index" json:"dossier_id,omitempty"`
	Action  string  `gorm:"not null;index" json:"action"`
	Details string  `gorm:"type:text" json:"details,omitempty"` // JSON encoded
}

// BeforeCreate hook to generate UUID
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
