package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminInvitation is a one-time code granting the admin role. Only the bcrypt hash is stored.
type AdminInvitation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email       string     `gorm:"not null;index" json:"email"`
	CodeHash    string     `gorm:"not null" json:"-"`
	InvitedByID string     `gorm:"column:invited_by;type:uuid;not null" json:"invited_by"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy  *string    `gorm:"type:uuid" json:"accepted_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (i *AdminInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for AdminInvitation model
func (AdminInvitation) TableName() string {
	return "admin_invitations"
}

// IsUsable reports whether the invitation can still be accepted
func (i *AdminInvitation) IsUsable(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}
