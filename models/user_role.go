package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserRole grants a role to an auth user
type UserRole struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role   string `gorm:"not null;uniqueIndex:idx_user_role" json:"role"`
}

// BeforeCreate hook to generate UUID
func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for UserRole model
func (UserRole) TableName() string {
	return "user_roles"
}

// IsValidRole checks if the role is valid
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
