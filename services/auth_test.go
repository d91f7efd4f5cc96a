package services

import (
	"context"
	"testing"
	"time"

	"reclamassur/config"
	"reclamassur/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	db := setupTestDB(t)
	admin := seedAdmin(t, db)
	profile, _ := seedCase(t, db)
	ctx := context.Background()
	actor := AuditContext{UserID: admin.ID, Email: admin.Email}

	role, err := GetUserRole(db, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	require.NoError(t, GrantRole(ctx, db, actor, profile.ID, models.RoleAdmin))
	require.NoError(t, GrantRole(ctx, db, actor, profile.ID, models.RoleAdmin))
	role, err = GetUserRole(db, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	admins, err := ListAdmins(ctx, db)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	assert.ErrorIs(t, GrantRole(ctx, db, actor, uuid.New().String(), models.RoleAdmin), ErrMissingProfile)
	assert.ErrorIs(t, GrantRole(ctx, db, actor, profile.ID, "superadmin"), ErrValidation)
	assert.ErrorIs(t, RevokeRole(ctx, db, actor, admin.ID, models.RoleAdmin), ErrForbidden)

	require.NoError(t, RevokeRole(ctx, db, actor, profile.ID, models.RoleAdmin))
	has, err := HasRole(db, profile.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, has)

	var grants, revokes int64
	db.Model(&models.AdminAuditLog{}).Where("action = ?", models.AdminActionRoleGrant).Count(&grants)
	db.Model(&models.AdminAuditLog{}).Where("action = ?", models.AdminActionRoleRevoke).Count(&revokes)
	assert.Equal(t, int64(1), grants)
	assert.Equal(t, int64(1), revokes)
}

func TestInvitationService(t *testing.T) {
	db := setupTestDB(t)
	admin := seedAdmin(t, db)
	invitee := &models.Profile{ID: uuid.New().String(), Email: "new.admin@reclamassur.fr"}
	require.NoError(t, db.Create(invitee).Error)
	ctx := context.Background()

	svc := NewInvitationService(db, &config.Config{EmailTestMode: true, AppURL: "http://test.fr"})
	actor := AuditContext{UserID: admin.ID, Email: admin.Email}

	_, _, err := svc.Generate(ctx, actor, "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)

	invitation, code, err := svc.Generate(ctx, actor, " New.Admin@reclamassur.fr ")
	require.NoError(t, err)
	assert.Equal(t, "new.admin@reclamassur.fr", invitation.Email)
	assert.NotEqual(t, code, invitation.CodeHash)
	assert.Len(t, code, 16)
	assert.WithinDuration(t, time.Now().Add(InvitationValidity), invitation.ExpiresAt, time.Minute)

	assert.ErrorIs(t, svc.Accept(ctx, invitee.ID, invitee.Email, "WRONGCODE"), ErrInvitationInvalid)
	require.NoError(t, svc.Accept(ctx, invitee.ID, invitee.Email, code))

	isAdmin, err := HasRole(db, invitee.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	// single use
	assert.ErrorIs(t, svc.Accept(ctx, invitee.ID, invitee.Email, code), ErrInvitationInvalid)

	// expired
	_, expiredCode, err := svc.Generate(ctx, actor, "late@reclamassur.fr")
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(InvitationValidity + time.Hour) }
	assert.ErrorIs(t, svc.Accept(ctx, invitee.ID, "late@reclamassur.fr", expiredCode), ErrInvitationInvalid)
}

func TestDiagnoseAuthState(t *testing.T) {
	db := setupTestDB(t)
	admin := seedAdmin(t, db)
	ctx := context.Background()

	d := DiagnoseAuthState(ctx, db, TokenInfo{})
	assert.False(t, d.TokenPresent)
	assert.Contains(t, d.Issues, "no bearer token")

	d = DiagnoseAuthState(ctx, db, TokenInfo{Present: true, Error: "token is expired"})
	assert.Equal(t, "token is expired", d.TokenError)
	assert.Contains(t, d.Issues, "token rejected")

	d = DiagnoseAuthState(ctx, db, TokenInfo{Present: true, Valid: true, UserID: admin.ID, Email: "other@x.fr"})
	assert.True(t, d.ProfileExists)
	assert.True(t, d.IsAdmin)
	assert.Equal(t, models.RoleAdmin, d.Role)
	assert.Contains(t, d.Issues, "token email differs from profile email")

	d = DiagnoseAuthState(ctx, db, TokenInfo{Present: true, Valid: true, UserID: uuid.New().String()})
	assert.False(t, d.ProfileExists)
	assert.Equal(t, models.RoleUser, d.Role)
	assert.Contains(t, d.Issues, "no profile for user")
}

func TestEnsureAndUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New().String()

	_, err := EnsureProfile(ctx, db, userID, "")
	assert.ErrorIs(t, err, ErrMissingProfile)

	profile, err := EnsureProfile(ctx, db, userID, "Paul@Example.fr")
	require.NoError(t, err)
	assert.Equal(t, "paul@example.fr", profile.Email)

	again, err := EnsureProfile(ctx, db, userID, "paul@example.fr")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	_, err = UpdateProfile(ctx, db, userID, ProfileInput{FirstName: "Paul", Address: models.Address{Street: "1 rue", City: "Lyon", PostalCode: "69A"}})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := UpdateProfile(ctx, db, userID, ProfileInput{FirstName: " Paul ", LastName: "Martin",
		Address: models.Address{Street: "1 rue de la Paix", PostalCode: "69001", City: "Lyon"}})
	require.NoError(t, err)
	assert.Equal(t, "Paul Martin", updated.FullName())
	assert.Equal(t, "1 rue de la Paix, 69001 Lyon", updated.Address.Data().String())

	found, err := FindProfileByEmail(ctx, db, "PAUL@example.fr")
	require.NoError(t, err)
	assert.Equal(t, userID, found.ID)
}
