package models

import "time"

// Known configuration keys
const (
	ConfigAIPreferredProvider = "ai_preferred_provider"
)

// Configuration is a key/value setting editable by admins
type Configuration struct {
	Key         string    `gorm:"column:cle;primarykey" json:"cle"`
	Value       string    `gorm:"column:valeur;type:text;not null" json:"valeur"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedByID *string   `gorm:"column:updated_by;type:uuid" json:"updated_by,omitempty"`
}

// TableName specifies the table name for Configuration model
func (Configuration) TableName() string {
	return "configuration"
}
