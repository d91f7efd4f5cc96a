package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reclamassur/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileInput is the client-editable part of a profile
type ProfileInput struct {
	FirstName string         `json:"prenom"`
	LastName  string         `json:"nom"`
	Phone     *string        `json:"telephone"`
	Address   models.Address `json:"adresse"`
}

// EnsureProfile returns the profile of an authenticated user, creating it from the token
// identity on first sight
func EnsureProfile(ctx context.Context, db *gorm.DB, userID, email string) (*models.Profile, error) {
	var profile models.Profile
	err := db.WithContext(ctx).First(&profile, "id = ?", userID).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if email == "" {
		return nil, ErrMissingProfile
	}

	profile = models.Profile{ID: userID, Email: strings.ToLower(email)}
	if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile replaces the editable profile fields. The address is validated by the model hook.
func UpdateProfile(ctx context.Context, db *gorm.DB, userID string, input ProfileInput) (*models.Profile, error) {
	var profile models.Profile
	if err := db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingProfile
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	if err := input.Address.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	profile.FirstName = strings.TrimSpace(input.FirstName)
	profile.LastName = strings.TrimSpace(input.LastName)
	profile.Phone = input.Phone
	profile.Address = datatypes.NewJSONType(input.Address)

	if err := db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &profile, nil
}

// FindProfileByEmail looks a profile up by e-mail, case-insensitively
func FindProfileByEmail(ctx context.Context, db *gorm.DB, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingProfile
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}
