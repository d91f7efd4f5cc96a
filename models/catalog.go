package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimType is an admin-configurable claim category ("type de sinistre")
type ClaimType struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code        string  `gorm:"uniqueIndex;not null" json:"code"`
	Label       string  `gorm:"column:libelle;not null" json:"libelle"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool    `gorm:"column:actif;not null;default:true" json:"actif"`
	SortOrder   int     `gorm:"column:ordre;not null;default:0" json:"ordre"`
}

// BeforeCreate hook to generate UUID
func (t *ClaimType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ClaimType model
func (ClaimType) TableName() string {
	return "types_sinistres"
}

// LetterType is an admin-configurable letter category ("type de courrier")
type LetterType struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code        string  `gorm:"uniqueIndex;not null" json:"code"`
	Label       string  `gorm:"column:libelle;not null" json:"libelle"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool    `gorm:"column:actif;not null;default:true" json:"actif"`
	SortOrder   int     `gorm:"column:ordre;not null;default:0" json:"ordre"`
}

// BeforeCreate hook to generate UUID
func (t *LetterType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for LetterType model
func (LetterType) TableName() string {
	return "types_courriers"
}

// ClaimLetterMapping declares which letter types are offered for a claim type
type ClaimLetterMapping struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ClaimTypeCode  string `gorm:"column:type_sinistre_code;not null;uniqueIndex:idx_sinistre_courrier" json:"type_sinistre_code"`
	LetterTypeCode string `gorm:"column:type_courrier_code;not null;uniqueIndex:idx_sinistre_courrier" json:"type_courrier_code"`
	IsActive       bool   `gorm:"column:actif;not null;default:true" json:"actif"`
}

// BeforeCreate hook to generate UUID
func (m *ClaimLetterMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ClaimLetterMapping model
func (ClaimLetterMapping) TableName() string {
	return "sinistre_courrier_mapping"
}
