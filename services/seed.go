package services

import (
	"fmt"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedDefaultCatalogs creates the built-in claim types, letter types and their mappings.
// Existing codes are left untouched so admin edits survive restarts.
func SeedDefaultCatalogs(db *gorm.DB) error {
	claimTypes := []models.ClaimType{
		{Code: "auto", Label: "Automobile", SortOrder: 0},
		{Code: "habitation", Label: "Habitation", SortOrder: 1},
		{Code: "sante", Label: "Santé", SortOrder: 2},
		{Code: "other", Label: "Autre", SortOrder: 3},
	}
	letterTypes := []models.LetterType{
		{Code: models.LetterTypeInternalComplaint, Label: "Réclamation interne", SortOrder: 0},
		{Code: models.LetterTypeMediation, Label: "Saisine du médiateur", SortOrder: 1},
		{Code: models.LetterTypeFormalNotice, Label: "Mise en demeure", SortOrder: 2},
	}

	for _, ct := range claimTypes {
		var count int64
		if err := db.Model(&models.ClaimType{}).Where("code = ?", ct.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check claim type %s: %w", ct.Code, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&ct).Error; err != nil {
			return fmt.Errorf("failed to create claim type %s: %w", ct.Code, err)
		}
		zap.L().Info("seeded claim type", zap.String("code", ct.Code))
	}

	for _, lt := range letterTypes {
		var count int64
		if err := db.Model(&models.LetterType{}).Where("code = ?", lt.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check letter type %s: %w", lt.Code, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&lt).Error; err != nil {
			return fmt.Errorf("failed to create letter type %s: %w", lt.Code, err)
		}
		zap.L().Info("seeded letter type", zap.String("code", lt.Code))
	}

	var mappings int64
	if err := db.Model(&models.ClaimLetterMapping{}).Count(&mappings).Error; err != nil {
		return fmt.Errorf("failed to count mappings: %w", err)
	}
	if mappings > 0 {
		return nil
	}
	for _, ct := range claimTypes {
		for _, lt := range letterTypes {
			m := models.ClaimLetterMapping{ClaimTypeCode: ct.Code, LetterTypeCode: lt.Code, IsActive: true}
			if err := db.Create(&m).Error; err != nil {
				return fmt.Errorf("failed to create mapping %s/%s: %w", ct.Code, lt.Code, err)
			}
		}
	}
	return nil
}
