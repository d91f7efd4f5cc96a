package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document type tags
const (
	DocumentTypeRefusalLetter = "lettre_refus"
	DocumentTypePolicy        = "contrat"
	DocumentTypeInvoice       = "facture"
	DocumentTypePhoto         = "photo"
	DocumentTypeOther         = "autre"
)

// Document is a stored file attached to a case
type Document struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"column:dossier_id;type:uuid;not null;index" json:"dossier_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	UploadedByID string `gorm:"column:uploaded_by;type:uuid;not null" json:"uploaded_by"`

	// File metadata
	FileName     string `gorm:"column:nom_fichier;not null" json:"nom_fichier"`
	StoragePath  string `gorm:"column:chemin_stockage;not null" json:"-"`
	URL          string `gorm:"column:url" json:"url,omitempty"`
	MimeType     string `gorm:"column:type_mime" json:"type_mime,omitempty"`
	FileSize     int64  `gorm:"column:taille;not null" json:"taille"`
	DocumentType string `gorm:"column:type_document;not null;default:autre" json:"type_document"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.DocumentType == "" {
		d.DocumentType = DocumentTypeOther
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// GetDownloadURL returns the API download path for this document
func (d *Document) GetDownloadURL() string {
	return "/api/dossiers/" + d.CaseID + "/documents/" + d.ID + "/download"
}

// IsValidDocumentType checks if the document type tag is known
func IsValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeRefusalLetter, DocumentTypePolicy, DocumentTypeInvoice, DocumentTypePhoto, DocumentTypeOther:
		return true
	}
	return false
}
