package handlers

import (
	"net/http"
	"time"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

func auditFilters(c echo.Context) services.AuditLogFilters {
	filters := services.AuditLogFilters{
		UserID:     c.QueryParam("user_id"),
		CaseID:     c.QueryParam("dossier_id"),
		TargetType: c.QueryParam("target_type"),
		Action:     c.QueryParam("action"),
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		if t, err := services.ParseDate(dateFrom); err == nil {
			filters.DateFrom = t
		}
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		if t, err := services.ParseDate(dateTo); err == nil {
			filters.DateTo = services.EndOfDay(t)
		}
	}
	return filters
}

// AdminAuditLogsHandler lists admin actions
func AdminAuditLogsHandler(c echo.Context) error {
	page, size := pageParams(c)
	logs, total, err := services.ListAdminAuditLogs(db.DB, auditFilters(c), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{Data: logs, Total: total, Page: page, PageSize: size})
}

// AdminTargetHistoryHandler lists the admin actions performed on one record
func AdminTargetHistoryHandler(c echo.Context) error {
	logs, err := services.GetTargetAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

// AdminActivityLogsHandler lists user activity
func AdminActivityLogsHandler(c echo.Context) error {
	page, size := pageParams(c)
	logs, total, err := services.ListActivityLogs(db.DB, auditFilters(c), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{Data: logs, Total: total, Page: page, PageSize: size})
}

type invitationRequest struct {
	Email string `json:"email"`
}

// AdminCreateInvitationHandler issues an admin invitation. The clear code is only ever
// returned here.
func AdminCreateInvitationHandler(c echo.Context) error {
	var body invitationRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	invitations := services.NewInvitationService(db.DB, getConfig(c))
	invitation, code, err := invitations.Generate(c.Request().Context(), middleware.GetAuditContext(c), body.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"invitation": invitation,
		"code":       code,
	})
}

// AdminListAdminsHandler lists the profiles holding the admin role
func AdminListAdminsHandler(c echo.Context) error {
	admins, err := services.ListAdmins(c.Request().Context(), db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, admins)
}

type roleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AdminGrantRoleHandler grants a role to a user
func AdminGrantRoleHandler(c echo.Context) error {
	var body roleRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if err := services.GrantRole(c.Request().Context(), db.DB, middleware.GetAuditContext(c), body.UserID, body.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminRevokeRoleHandler removes a role from a user
func AdminRevokeRoleHandler(c echo.Context) error {
	err := services.RevokeRole(c.Request().Context(), db.DB, middleware.GetAuditContext(c), c.Param("user_id"), c.Param("role"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminListConfigurationHandler lists settings
func AdminListConfigurationHandler(c echo.Context) error {
	settings, err := services.ListConfiguration(db.DB)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

type configurationRequest struct {
	Value string `json:"valeur"`
}

// AdminSetConfigurationHandler stores one setting
func AdminSetConfigurationHandler(c echo.Context) error {
	var body configurationRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	setting, err := services.SetConfigurationValue(db.DB, middleware.GetAuditContext(c), c.Param("key"), body.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting)
}

// AdminExportHandler downloads cases and payments as a spreadsheet
func AdminExportHandler(c echo.Context) error {
	filters := services.CaseFilters{
		Status:    c.QueryParam("statut"),
		ClaimType: c.QueryParam("type_sinistre"),
		Search:    c.QueryParam("q"),
	}

	buf, err := services.ExportWorkbook(c.Request().Context(), db.DB, middleware.GetAuditContext(c), filters)
	if err != nil {
		return err
	}

	filename := services.ExportFileName(time.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// AdminSecurityAlertsHandler lists recent alerts about repeated rejected credentials
func AdminSecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Monitor.RecentAlerts())
}
