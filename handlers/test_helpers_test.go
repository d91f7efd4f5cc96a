package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"reclamassur/config"
	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-jwt-secret-with-enough-length-0123456789"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	require.NoError(t, services.SeedDefaultCatalogs(testDB))

	services.Storage = services.NewLocalStorage(t.TempDir())

	// Set global DB
	db.DB = testDB
	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		SupabaseJWTSecret: testJWTSecret,
		EmailTestMode:     true,
		AppURL:            "http://localhost:8080",
		AIRetryBaseDelay:  time.Millisecond,
	}
}

// newTestServer wires the full route table the way cmd/server does
func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, cfg)
	return e
}

func seedProfile(t *testing.T, testDB *gorm.DB, admin bool) (*models.Profile, string) {
	t.Helper()
	profile := &models.Profile{
		ID:        uuid.New().String(),
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "user." + uuid.New().String()[:8] + "@example.fr",
	}
	require.NoError(t, testDB.Create(profile).Error)
	if admin {
		require.NoError(t, testDB.Create(&models.UserRole{UserID: profile.ID, Role: models.RoleAdmin}).Error)
	}

	token, err := middleware.SignToken(testJWTSecret, profile.ID, profile.Email, time.Hour)
	require.NoError(t, err)
	return profile, token
}

func seedCase(t *testing.T, testDB *gorm.DB, owner *models.Profile) *models.Case {
	t.Helper()
	amount := 1500.5
	incident := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	caseRecord := &models.Case{
		UserID:        owner.ID,
		InsurerName:   "Assurances Générales",
		PolicyNumber:  "POL-123456",
		ClaimType:     "habitation",
		IncidentDate:  &incident,
		RefusedAmount: &amount,
		Description:   "Dégât des eaux dans la cuisine",
	}
	require.NoError(t, testDB.Create(caseRecord).Error)
	return caseRecord
}

var requestCounter atomic.Int64

// nextRemoteAddr gives every request its own client IP so the shared limiters never trip
func nextRemoteAddr() string {
	n := requestCounter.Add(1)
	return fmt.Sprintf("10.%d.%d.%d:4321", (n>>16)&0xff, (n>>8)&0xff, n&0xff)
}

func doRequest(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = nextRemoteAddr()
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func chatCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]interface{}{
			"id":      "c1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "llama-3.3-70b-versatile",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}
