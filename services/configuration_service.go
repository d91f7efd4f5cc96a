package services

import (
	"errors"
	"fmt"
	"strings"

	"reclamassur/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetConfigurationValue returns the stored value for key, or defaultValue when unset or unreadable
func GetConfigurationValue(db *gorm.DB, key, defaultValue string) string {
	var setting models.Configuration
	err := db.First(&setting, "cle = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Warn("configuration lookup failed", zap.String("key", key), zap.Error(err))
		}
		return defaultValue
	}
	if strings.TrimSpace(setting.Value) == "" {
		return defaultValue
	}
	return setting.Value
}

// ListConfiguration returns every setting ordered by key
func ListConfiguration(db *gorm.DB) ([]models.Configuration, error) {
	var settings []models.Configuration
	if err := db.Order("cle ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list configuration: %w", err)
	}
	return settings, nil
}

// SetConfigurationValue upserts a setting and records the admin action
func SetConfigurationValue(db *gorm.DB, actor AuditContext, key, value string) (*models.Configuration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: configuration key is required", ErrValidation)
	}
	if key == models.ConfigAIPreferredProvider && !isKnownProviderHint(value) {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrValidation, value)
	}

	old := GetConfigurationValue(db, key, "")
	setting := models.Configuration{Key: key, Value: value, UpdatedByID: &actor.UserID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cle"}},
		DoUpdates: clause.AssignmentColumns([]string{"valeur", "updated_at", "updated_by"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	LogAdminAction(db, actor, models.AdminActionConfigSet, "configuration", key,
		map[string]interface{}{"valeur": old}, map[string]interface{}{"valeur": value})
	return &setting, nil
}

func isKnownProviderHint(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto", "mistral", "groq", "openai", "claude":
		return true
	}
	return false
}
