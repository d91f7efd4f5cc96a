package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reclamassur/db"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "success")
}

func requestWithToken(e *echo.Echo, token string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestParseToken(t *testing.T) {
	token, err := SignToken(testSecret, "user-1", "marie@example.fr", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "marie@example.fr", claims.Email)

	_, err = ParseToken("wrong-secret", token)
	assert.Error(t, err)

	_, err = ParseToken("", token)
	assert.Error(t, err)

	expired, err := SignToken(testSecret, "user-1", "marie@example.fr", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, noSubject)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	t.Run("CreatesProfileOnFirstRequest", func(t *testing.T) {
		userID := uuid.New().String()
		token, err := SignToken(testSecret, userID, "new@example.fr", time.Hour)
		require.NoError(t, err)

		c, rec := requestWithToken(e, token)
		require.NoError(t, RequireAuth(testSecret)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, GetCurrentProfile(c).ID)
		assert.False(t, IsAdmin(c))
		assert.Equal(t, userID, GetScope(c).UserID)

		var count int64
		testDB.Model(&models.Profile{}).Where("id = ?", userID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ResolvesAdmin", func(t *testing.T) {
		admin := models.Profile{ID: uuid.New().String(), Email: "admin@reclamassur.fr"}
		require.NoError(t, testDB.Create(&admin).Error)
		require.NoError(t, testDB.Create(&models.UserRole{UserID: admin.ID, Role: models.RoleAdmin}).Error)
		token, err := SignToken(testSecret, admin.ID, admin.Email, time.Hour)
		require.NoError(t, err)

		c, _ := requestWithToken(e, token)
		require.NoError(t, RequireAuth(testSecret)(RequireAdmin()(okHandler))(c))
		assert.True(t, GetScope(c).IsAdmin)
	})

	t.Run("MissingToken", func(t *testing.T) {
		c, _ := requestWithToken(e, "")
		err := RequireAuth(testSecret)(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("BadSignature", func(t *testing.T) {
		token, err := SignToken("another-secret", uuid.New().String(), "x@example.fr", time.Hour)
		require.NoError(t, err)
		c, _ := requestWithToken(e, token)
		err = RequireAuth(testSecret)(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()

	t.Run("NoProfile", func(t *testing.T) {
		c, _ := requestWithToken(e, "")
		err := RequireAdmin()(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("PlainUser", func(t *testing.T) {
		c, _ := requestWithToken(e, "")
		c.Set(ContextKeyProfile, &models.Profile{ID: "u1"})
		c.Set(ContextKeyRole, models.RoleUser)
		err := RequireAdmin()(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}

func TestInspectToken(t *testing.T) {
	e := echo.New()

	c, _ := requestWithToken(e, "")
	assert.False(t, InspectToken(c, testSecret).Present)

	c, _ = requestWithToken(e, "garbage")
	info := InspectToken(c, testSecret)
	assert.True(t, info.Present)
	assert.False(t, info.Valid)
	assert.NotEmpty(t, info.Error)

	token, err := SignToken(testSecret, "user-9", "u9@example.fr", time.Hour)
	require.NoError(t, err)
	c, _ = requestWithToken(e, token)
	info = InspectToken(c, testSecret)
	assert.True(t, info.Valid)
	assert.Equal(t, "user-9", info.UserID)
	require.NotNil(t, info.ExpiresAt)
}

func TestResolveBearer(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	_, _, err := ResolveBearer(ctx, testSecret, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, _, err = ResolveBearer(ctx, testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	admin := models.Profile{ID: uuid.New().String(), Email: "gestion@reclamassur.fr"}
	require.NoError(t, testDB.Create(&admin).Error)
	require.NoError(t, testDB.Create(&models.UserRole{UserID: admin.ID, Role: models.RoleAdmin}).Error)
	token, err := SignToken(testSecret, admin.ID, admin.Email, time.Hour)
	require.NoError(t, err)

	profile, role, err := ResolveBearer(ctx, testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, profile.ID)
	assert.Equal(t, services.Scope{UserID: admin.ID, IsAdmin: true}, ScopeFor(profile, role))
	assert.Equal(t, services.Scope{}, ScopeFor(nil, ""))
}
