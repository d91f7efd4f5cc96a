package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusRefunded  = "refunded"
)

// Payment is a billing record ("paiement") for a case
type Payment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"column:dossier_id;type:uuid;not null;index" json:"dossier_id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	PaymentIntentID string     `gorm:"column:payment_intent_id;uniqueIndex;not null" json:"payment_intent_id"`
	Amount          float64    `gorm:"column:montant;not null" json:"montant"`
	Currency        string     `gorm:"column:devise;not null;default:eur" json:"devise"`
	Status          string     `gorm:"column:statut;not null;default:pending;index" json:"statut"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	PaidAt          *time.Time `gorm:"column:paye_le" json:"paye_le,omitempty"`
}

// BeforeCreate hook to generate UUID and defaults
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	if p.Currency == "" {
		p.Currency = "eur"
	}
	return nil
}

// TableName specifies the table name for Payment model
func (Payment) TableName() string {
	return "paiements"
}

// IsValidPaymentStatus checks if the status is valid
func IsValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusRefunded:
		return true
	}
	return false
}
