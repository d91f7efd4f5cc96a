package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LetterTemplate is a reusable letter body ("modèle") with {{variable}} placeholders
type LetterTemplate struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string  `gorm:"column:nom;not null" json:"nom"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// Classification
	ClaimType  string `gorm:"column:type_sinistre;not null;index" json:"type_sinistre"`
	LetterType string `gorm:"column:type_courrier;not null;index" json:"type_courrier"`

	// Content with {{variable}} placeholders
	Content           string                      `gorm:"column:contenu;type:text;not null" json:"contenu"`
	RequiredVariables datatypes.JSONSlice[string] `gorm:"column:variables_requises" json:"variables_requises"`

	IsActive    bool    `gorm:"column:actif;not null;default:true" json:"actif"`
	CreatedByID *string `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *LetterTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for LetterTemplate model
func (LetterTemplate) TableName() string {
	return "modeles_courriers"
}
