package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Address is the postal address stored as a JSON column on profiles
type Address struct {
	Street     string `json:"rue"`
	PostalCode string `json:"code_postal"`
	City       string `json:"ville"`
	Country    string `json:"pays,omitempty"`
}

// Validate checks the address shape at the boundary where it enters the system
func (a Address) Validate() error {
	if a.IsZero() {
		return nil
	}
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
		return errors.New("address requires street and city")
	}
	if a.PostalCode != "" {
		for _, r := range a.PostalCode {
			if r < '0' || r > '9' {
				return errors.New("postal code must be numeric")
			}
		}
	}
	return nil
}

// IsZero reports whether no address field is set
func (a Address) IsZero() bool {
	return a.Street == "" && a.PostalCode == "" && a.City == "" && a.Country == ""
}

// String renders the address on one line
func (a Address) String() string {
	parts := []string{}
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	city := strings.TrimSpace(a.PostalCode + " " + a.City)
	if city != "" {
		parts = append(parts, city)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Profile holds the identity of an authenticated user. ID is the auth user id.
type Profile struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstName string                      `gorm:"column:prenom" json:"prenom"`
	LastName  string                      `gorm:"column:nom" json:"nom"`
	Email     string                      `gorm:"uniqueIndex;not null" json:"email"`
	Phone     *string                     `gorm:"column:telephone" json:"telephone,omitempty"`
	Address   datatypes.JSONType[Address] `gorm:"column:adresse" json:"adresse"`
}

// BeforeSave validates the typed address
func (p *Profile) BeforeSave(tx *gorm.DB) error {
	return p.Address.Data().Validate()
}

// TableName specifies the table name for Profile model
func (Profile) TableName() string {
	return "profiles"
}

// FullName returns "first last", trimmed
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
