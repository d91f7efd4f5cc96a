package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"reclamassur/config"
	"reclamassur/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for invitation code hashes
	BcryptCost = 10
	// InvitationCodeLength is the number of random bytes in an invitation code
	InvitationCodeLength = 10
	// InvitationValidity is how long an admin invitation can be accepted
	InvitationValidity = 7 * 24 * time.Hour
)

// GetUserRole returns "admin" when the user holds the admin role, "user" otherwise
func GetUserRole(db *gorm.DB, userID string) (string, error) {
	isAdmin, err := HasRole(db, userID, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	if isAdmin {
		return models.RoleAdmin, nil
	}
	return models.RoleUser, nil
}

// HasRole reports whether the user holds the role
func HasRole(db *gorm.DB, userID, role string) (bool, error) {
	var count int64
	if err := db.Model(&models.UserRole{}).Where("user_id = ? AND role = ?", userID, role).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return count > 0, nil
}

// GrantRole gives a role to a profile. Granting a held role is a no-op.
func GrantRole(ctx context.Context, db *gorm.DB, actor AuditContext, userID, role string) error {
	if !models.IsValidRole(role) {
		return fmt.Errorf("%w: role %q", ErrValidation, role)
	}
	var profiles int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Count(&profiles).Error; err != nil {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if profiles == 0 {
		return ErrMissingProfile
	}

	held, err := HasRole(db.WithContext(ctx), userID, role)
	if err != nil {
		return err
	}
	if held {
		return nil
	}
	if err := db.WithContext(ctx).Create(&models.UserRole{UserID: userID, Role: role}).Error; err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}

	LogAdminAction(db, actor, models.AdminActionRoleGrant, "user_role", userID, nil, map[string]string{"role": role})
	return nil
}

// RevokeRole removes a role. An administrator cannot revoke their own admin role.
func RevokeRole(ctx context.Context, db *gorm.DB, actor AuditContext, userID, role string) error {
	if role == models.RoleAdmin && userID == actor.UserID {
		return fmt.Errorf("%w: cannot revoke your own admin role", ErrForbidden)
	}
	res := db.WithContext(ctx).Where("user_id = ? AND role = ?", userID, role).Delete(&models.UserRole{})
	if res.Error != nil {
		return fmt.Errorf("failed to revoke role: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		LogAdminAction(db, actor, models.AdminActionRoleRevoke, "user_role", userID, map[string]string{"role": role}, nil)
	}
	return nil
}

// ListAdmins returns the profiles holding the admin role
func ListAdmins(ctx context.Context, db *gorm.DB) ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.WithContext(ctx).
		Where("id IN (?)", db.Model(&models.UserRole{}).Select("user_id").Where("role = ?", models.RoleAdmin)).
		Order("email ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return profiles, nil
}

// GenerateInvitationCode returns a random human-typeable code
func GenerateInvitationCode() (string, error) {
	b := make([]byte, InvitationCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invitation code: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}

// InvitationService issues and redeems admin invitations
type InvitationService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

// NewInvitationService creates an invitation service
func NewInvitationService(db *gorm.DB, cfg *config.Config) *InvitationService {
	return &InvitationService{db: db, cfg: cfg, now: time.Now}
}

// Generate stores a hashed invitation and e-mails the clear code. The clear code is also
// returned once so the inviting admin can pass it on if the e-mail fails.
func (s *InvitationService) Generate(ctx context.Context, actor AuditContext, email string) (*models.AdminInvitation, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: invalid email", ErrValidation)
	}

	code, err := GenerateInvitationCode()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash invitation code: %w", err)
	}

	invitation := &models.AdminInvitation{
		Email:       email,
		CodeHash:    string(hash),
		InvitedByID: actor.UserID,
		ExpiresAt:   s.now().Add(InvitationValidity),
	}
	if err := s.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create invitation: %w", err)
	}

	msg, err := BuildAdminInvitationEmail(email, AdminInvitationEmailData{
		InvitedBy:  actor.Email,
		Code:       code,
		ExpiresAt:  FormatShortDateFR(invitation.ExpiresAt),
		AcceptLink: strings.TrimRight(s.cfg.AppURL, "/") + "/admin/invitation",
	})
	if err == nil {
		err = SendEmail(s.cfg, msg)
	}
	if err != nil {
		zap.L().Warn("failed to send admin invitation", zap.String("email", email), zap.Error(err))
	}

	LogAdminAction(s.db, actor, models.AdminActionInvite, "admin_invitation", invitation.ID, nil, map[string]string{"email": email})
	return invitation, code, nil
}

// Accept redeems a code for the signed-in user and grants the admin role
func (s *InvitationService) Accept(ctx context.Context, userID, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var invitations []models.AdminInvitation
	err := s.db.WithContext(ctx).
		Where("email = ? AND accepted_at IS NULL AND expires_at > ?", email, s.now()).
		Find(&invitations).Error
	if err != nil {
		return fmt.Errorf("failed to fetch invitations: %w", err)
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	for _, inv := range invitations {
		if bcrypt.CompareHashAndPassword([]byte(inv.CodeHash), []byte(code)) != nil {
			continue
		}

		now := s.now()
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.AdminInvitation{}).
				Where("id = ? AND accepted_at IS NULL", inv.ID).
				Updates(map[string]interface{}{"accepted_at": now, "accepted_by": userID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvitationInvalid
			}
			return GrantRole(ctx, tx, AuditContext{UserID: inv.InvitedByID, Email: email}, userID, models.RoleAdmin)
		})
		if err != nil {
			if errors.Is(err, ErrInvitationInvalid) || errors.Is(err, ErrMissingProfile) {
				return err
			}
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		return nil
	}
	return ErrInvitationInvalid
}

// TokenInfo is what the authentication middleware learned from the bearer token
type TokenInfo struct {
	Present   bool
	Valid     bool
	Error     string
	UserID    string
	Email     string
	ExpiresAt *time.Time
}

// AuthDiagnosis describes why a request is or is not authorized
type AuthDiagnosis struct {
	TokenPresent   bool       `json:"token_present"`
	TokenValid     bool       `json:"token_valid"`
	TokenError     string     `json:"token_error,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	ProfileExists  bool       `json:"profile_exists"`
	ProfileEmail   string     `json:"profile_email,omitempty"`
	Role           string     `json:"role,omitempty"`
	IsAdmin        bool       `json:"is_admin"`
	Issues         []string   `json:"issues"`
}

// DiagnoseAuthState cross-checks the token against the profile and role tables
func DiagnoseAuthState(ctx context.Context, db *gorm.DB, token TokenInfo) AuthDiagnosis {
	d := AuthDiagnosis{
		TokenPresent:   token.Present,
		TokenValid:     token.Valid,
		TokenError:     token.Error,
		UserID:         token.UserID,
		Email:          token.Email,
		TokenExpiresAt: token.ExpiresAt,
		Issues:         []string{},
	}
	if !token.Present {
		d.Issues = append(d.Issues, "no bearer token")
		return d
	}
	if !token.Valid {
		d.Issues = append(d.Issues, "token rejected")
		return d
	}

	var profile models.Profile
	err := db.WithContext(ctx).First(&profile, "id = ?", token.UserID).Error
	switch {
	case err == nil:
		d.ProfileExists = true
		d.ProfileEmail = profile.Email
		if token.Email != "" && !strings.EqualFold(token.Email, profile.Email) {
			d.Issues = append(d.Issues, "token email differs from profile email")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		d.Issues = append(d.Issues, "no profile for user")
	default:
		d.Issues = append(d.Issues, "profile lookup failed: "+err.Error())
	}

	role, err := GetUserRole(db.WithContext(ctx), token.UserID)
	if err != nil {
		d.Issues = append(d.Issues, "role lookup failed: "+err.Error())
	} else {
		d.Role = role
		d.IsAdmin = role == models.RoleAdmin
	}
	return d
}
