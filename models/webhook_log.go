package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook processing outcomes
const (
	WebhookStatusReceived  = "received"
	WebhookStatusProcessed = "processed"
	WebhookStatusIgnored   = "ignored"
	WebhookStatusRejected  = "rejected"
	WebhookStatusFailed    = "failed"
)

// WebhookLog keeps the raw payload of every inbound payment webhook
type WebhookLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Source    string         `gorm:"not null;index" json:"source"`
	EventType string         `gorm:"index" json:"event_type"`
	Payload   datatypes.JSON `json:"payload"`
	Status    string         `gorm:"not null;default:received" json:"status"`
	Error     *string        `gorm:"type:text" json:"error,omitempty"`
}

// BeforeCreate hook to generate UUID
func (w *WebhookLog) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Status == "" {
		w.Status = WebhookStatusReceived
	}
	return nil
}

// TableName specifies the table name for WebhookLog model
func (WebhookLog) TableName() string {
	return "webhook_logs"
}
