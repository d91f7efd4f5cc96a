package jobs

import (
	"testing"
	"time"

	"reclamassur/config"
	"reclamassur/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDeadlinesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestProcessDeadlines(t *testing.T) {
	db := setupDeadlinesTestDB(t)
	cfg := &config.Config{AppURL: "http://test.fr", EmailTestMode: true}
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

	client := models.Profile{ID: uuid.New().String(), FirstName: "Marie", LastName: "Dupont", Email: "marie@example.fr"}
	require.NoError(t, db.Create(&client).Error)
	caseRecord := models.Case{UserID: client.ID, InsurerName: "MAIF", PolicyNumber: "P-1", ClaimType: "auto"}
	require.NoError(t, db.Create(&caseRecord).Error)

	// 1. alert date reached, never alerted
	due := models.Deadline{CaseID: caseRecord.ID, Title: "Réponse assureur", DueDate: now.Add(72 * time.Hour), AlertDate: now.Add(-time.Hour)}
	require.NoError(t, db.Create(&due).Error)

	// 2. already alerted
	alertedAt := now.Add(-24 * time.Hour)
	alerted := models.Deadline{CaseID: caseRecord.ID, Title: "Déjà alertée", DueDate: now.Add(72 * time.Hour), AlertDate: now.Add(-48 * time.Hour), AlertSentAt: &alertedAt}
	require.NoError(t, db.Create(&alerted).Error)

	// 3. alert date in the future
	later := models.Deadline{CaseID: caseRecord.ID, Title: "Plus tard", DueDate: now.Add(30 * 24 * time.Hour), AlertDate: now.Add(20 * 24 * time.Hour)}
	require.NoError(t, db.Create(&later).Error)

	// 4. past due
	overdue := models.Deadline{CaseID: caseRecord.ID, Title: "Dépassée", DueDate: now.Add(-time.Hour), AlertDate: now.Add(-48 * time.Hour)}
	require.NoError(t, db.Create(&overdue).Error)

	run := ProcessDeadlines(db, cfg, now)
	assert.Equal(t, DeadlineRun{Expired: 1, Alerted: 1}, run)

	var reloaded models.Deadline
	require.NoError(t, db.First(&reloaded, "id = ?", due.ID).Error)
	require.NotNil(t, reloaded.AlertSentAt)
	assert.True(t, reloaded.AlertSentAt.Equal(now))

	require.NoError(t, db.First(&reloaded, "id = ?", alerted.ID).Error)
	assert.True(t, reloaded.AlertSentAt.Equal(alertedAt))

	require.NoError(t, db.First(&reloaded, "id = ?", later.ID).Error)
	assert.Nil(t, reloaded.AlertSentAt)

	require.NoError(t, db.First(&reloaded, "id = ?", overdue.ID).Error)
	assert.Equal(t, models.DeadlineStatusExpired, reloaded.Status)
	assert.Nil(t, reloaded.AlertSentAt)

	// a second pass sends nothing
	assert.Equal(t, DeadlineRun{}, ProcessDeadlines(db, cfg, now))
}
