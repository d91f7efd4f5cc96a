package handlers

import (
	"net/http"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

// ProfileResponse is the current user with their resolved role
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
	Role    string          `json:"role"`
	IsAdmin bool            `json:"is_admin"`
}

// GetProfileHandler returns the current profile
func GetProfileHandler(c echo.Context) error {
	role, _ := c.Get(middleware.ContextKeyRole).(string)
	return c.JSON(http.StatusOK, ProfileResponse{
		Profile: middleware.GetCurrentProfile(c),
		Role:    role,
		IsAdmin: middleware.IsAdmin(c),
	})
}

// UpdateProfileHandler edits the current profile
func UpdateProfileHandler(c echo.Context) error {
	var input services.ProfileInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	profile, err := services.UpdateProfile(c.Request().Context(), db.DB, middleware.GetCurrentProfile(c).ID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

type acceptInvitationRequest struct {
	Code string `json:"code"`
}

// AcceptInvitationHandler redeems an admin invitation code for the current user
func AcceptInvitationHandler(c echo.Context) error {
	var body acceptInvitationRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if body.Code == "" {
		return badRequest("code is required")
	}

	profile := middleware.GetCurrentProfile(c)
	invitations := services.NewInvitationService(db.DB, getConfig(c))
	if err := invitations.Accept(c.Request().Context(), profile.ID, profile.Email, body.Code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"role": models.RoleAdmin})
}

// DiagnoseAuthHandler explains what the server makes of the request's credentials. It is
// reachable without authentication so that rejected tokens can be diagnosed.
func DiagnoseAuthHandler(c echo.Context) error {
	token := middleware.InspectToken(c, getConfig(c).SupabaseJWTSecret)
	return c.JSON(http.StatusOK, services.DiagnoseAuthState(c.Request().Context(), db.DB, token))
}
