package services

import (
	"testing"
	"time"

	"reclamassur/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB initializes an isolated in-memory SQLite database with every model migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func stringToPtr(s string) *string {
	return &s
}

func floatToPtr(f float64) *float64 {
	return &f
}

func timeToPtr(t time.Time) *time.Time {
	return &t
}

// seedCase creates a client profile and a case owned by it
func seedCase(t *testing.T, db *gorm.DB) (*models.Profile, *models.Case) {
	t.Helper()
	profile := &models.Profile{
		ID:        uuid.New().String(),
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie." + uuid.New().String()[:8] + "@example.fr",
	}
	require.NoError(t, db.Create(profile).Error)

	caseRecord := &models.Case{
		UserID:        profile.ID,
		InsurerName:   "Assurances Générales",
		PolicyNumber:  "POL-123456",
		ClaimType:     "habitation",
		IncidentDate:  timeToPtr(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)),
		RefusalDate:   timeToPtr(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)),
		RefusedAmount: floatToPtr(1500.5),
		RefusalReason: stringToPtr("Exclusion de garantie"),
		Description:   "Dégât des eaux dans la cuisine",
	}
	require.NoError(t, db.Create(caseRecord).Error)
	caseRecord.Client = profile
	return profile, caseRecord
}

// seedAdmin creates a profile with the admin role
func seedAdmin(t *testing.T, db *gorm.DB) *models.Profile {
	t.Helper()
	admin := &models.Profile{
		ID:        uuid.New().String(),
		FirstName: "Admin",
		LastName:  "Reclam",
		Email:     "admin." + uuid.New().String()[:8] + "@reclamassur.fr",
	}
	require.NoError(t, db.Create(admin).Error)
	require.NoError(t, db.Create(&models.UserRole{UserID: admin.ID, Role: models.RoleAdmin}).Error)
	return admin
}
