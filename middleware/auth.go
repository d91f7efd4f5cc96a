package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"reclamassur/db"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// ContextKeyProfile is the context key for the authenticated profile
	ContextKeyProfile = "profile"
	// ContextKeyRole is the context key for the resolved role
	ContextKeyRole = "role"
)

// Claims are the fields read from a platform access token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 access token signed with the platform JWT secret
func ParseToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// InspectToken reports what the request token says without rejecting the request
func InspectToken(c echo.Context, secret string) services.TokenInfo {
	raw := bearerToken(c)
	if raw == "" {
		return services.TokenInfo{}
	}
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return services.TokenInfo{Present: true, Error: err.Error()}
	}

	info := services.TokenInfo{Present: true, Valid: true, UserID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info
}

// Errors returned by ResolveBearer
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ResolveBearer verifies a raw bearer token, loads or creates its profile and resolves the role
func ResolveBearer(ctx context.Context, secret, raw string) (*models.Profile, string, error) {
	if raw == "" {
		return nil, "", ErrMissingToken
	}
	claims, err := ParseToken(secret, raw)
	if err != nil {
		zap.L().Debug("token rejected", zap.Error(err))
		return nil, "", ErrInvalidToken
	}

	profile, err := services.EnsureProfile(ctx, db.DB, claims.Subject, claims.Email)
	if err != nil {
		return nil, "", err
	}
	role, err := services.GetUserRole(db.DB, profile.ID)
	if err != nil {
		return nil, "", err
	}
	return profile, role, nil
}

// ScopeFor returns the row visibility of a resolved profile and role
func ScopeFor(profile *models.Profile, role string) services.Scope {
	if profile == nil {
		return services.Scope{}
	}
	return services.Scope{UserID: profile.ID, IsAdmin: role == models.RoleAdmin}
}

// RequireAuth verifies the bearer token, loads or creates the profile and resolves the role
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, role, err := ResolveBearer(c.Request().Context(), secret, bearerToken(c))
			switch {
			case errors.Is(err, ErrMissingToken):
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			case errors.Is(err, ErrInvalidToken):
				services.Monitor.TrackRejection(c.RealIP(), services.RejectionInvalidToken)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			case errors.Is(err, services.ErrMissingProfile):
				return echo.NewHTTPError(http.StatusUnauthorized, "No profile for this account")
			case err != nil:
				return err
			}

			c.Set(ContextKeyProfile, profile)
			c.Set(ContextKeyRole, role)
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose profile does not hold the admin role
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetCurrentProfile(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if !IsAdmin(c) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// GetCurrentProfile retrieves the current profile from context
func GetCurrentProfile(c echo.Context) *models.Profile {
	profile, ok := c.Get(ContextKeyProfile).(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}

// IsAdmin reports whether the current profile holds the admin role
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ContextKeyRole).(string)
	return role == models.RoleAdmin
}

// GetScope returns the row visibility of the current request
func GetScope(c echo.Context) services.Scope {
	role, _ := c.Get(ContextKeyRole).(string)
	return ScopeFor(GetCurrentProfile(c), role)
}

// SignToken issues an HS256 token. Used by tests and the create-admin command.
func SignToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
