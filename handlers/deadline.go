package handlers

import (
	"net/http"
	"strconv"
	"time"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

// ListCaseDeadlinesHandler lists the deadlines of a case
func ListCaseDeadlinesHandler(c echo.Context) error {
	deadlines, err := services.NewDeadlineService(db.DB).ListForCase(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deadlines)
}

// AdminUpcomingDeadlinesHandler lists active deadlines due within ?jours= days (default 30)
func AdminUpcomingDeadlinesHandler(c echo.Context) error {
	days, err := strconv.Atoi(c.QueryParam("jours"))
	if err != nil || days <= 0 {
		days = 30
	}

	deadlines, err := services.NewDeadlineService(db.DB).ListUpcoming(c.Request().Context(), time.Now(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deadlines)
}

// AdminCreateDeadlineHandler adds a deadline to a case
func AdminCreateDeadlineHandler(c echo.Context) error {
	var input services.DeadlineInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	deadline, err := services.NewDeadlineService(db.DB).Create(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, deadline)
}

// AdminUpdateDeadlineHandler edits a deadline
func AdminUpdateDeadlineHandler(c echo.Context) error {
	var input services.DeadlineInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	deadline, err := services.NewDeadlineService(db.DB).Update(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deadline)
}

type deadlineStatusRequest struct {
	Status string `json:"statut"`
}

// AdminSetDeadlineStatusHandler marks a deadline handled, expired or active again
func AdminSetDeadlineStatusHandler(c echo.Context) error {
	var body deadlineStatusRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	deadline, err := services.NewDeadlineService(db.DB).SetStatus(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), body.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deadline)
}

// AdminDeleteDeadlineHandler deletes a deadline
func AdminDeleteDeadlineHandler(c echo.Context) error {
	if err := services.NewDeadlineService(db.DB).Delete(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
