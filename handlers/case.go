package handlers

import (
	"net/http"

	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseHandler submits a new case for the current user
func CreateCaseHandler(c echo.Context) error {
	profile := middleware.GetCurrentProfile(c)

	var input services.CaseInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	caseRecord, err := getCaseService().Submit(c.Request().Context(), profile.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, caseRecord)
}

// ListMyCasesHandler returns the current user's cases
func ListMyCasesHandler(c echo.Context) error {
	profile := middleware.GetCurrentProfile(c)
	cases, err := getCaseService().ListForUser(c.Request().Context(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns one case with its relations
func GetCaseHandler(c echo.Context) error {
	caseRecord, err := getCaseService().Get(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// UpdateCaseHandler edits the client fields of a case
func UpdateCaseHandler(c echo.Context) error {
	var input services.CaseInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	caseRecord, err := getCaseService().Update(c.Request().Context(), middleware.GetScope(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// AdminListCasesHandler lists every case with filters and pagination
func AdminListCasesHandler(c echo.Context) error {
	filters := services.CaseFilters{
		Status:    c.QueryParam("statut"),
		ClaimType: c.QueryParam("type_sinistre"),
		Search:    c.QueryParam("q"),
	}
	page, size := pageParams(c)

	cases, total, err := getCaseService().ListAll(c.Request().Context(), filters, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{Data: cases, Total: total, Page: page, PageSize: size})
}

type caseStatusRequest struct {
	Status string `json:"statut"`
}

// AdminUpdateCaseStatusHandler moves a case to another status
func AdminUpdateCaseStatusHandler(c echo.Context) error {
	var body caseStatusRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	caseRecord, err := getCaseService().UpdateStatus(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), body.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// AdminDeleteCaseHandler deletes a case and everything attached to it
func AdminDeleteCaseHandler(c echo.Context) error {
	if err := getCaseService().CascadeDelete(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
