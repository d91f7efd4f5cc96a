package handlers

import (
	"net/http"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

func includeInactive(c echo.Context) bool {
	return middleware.IsAdmin(c) && c.QueryParam("tous") == "1"
}

// ListClaimTypesHandler lists claim types
func ListClaimTypesHandler(c echo.Context) error {
	items, err := services.NewCatalogService(db.DB).ListClaimTypes(c.Request().Context(), !includeInactive(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// ListLetterTypesHandler lists letter types
func ListLetterTypesHandler(c echo.Context) error {
	items, err := services.NewCatalogService(db.DB).ListLetterTypes(c.Request().Context(), !includeInactive(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// AllowedLetterTypesHandler lists the letter types offered for a claim type
func AllowedLetterTypesHandler(c echo.Context) error {
	items, err := services.NewCatalogService(db.DB).AllowedLetterTypes(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// AdminSaveClaimTypeHandler creates or updates a claim type by code
func AdminSaveClaimTypeHandler(c echo.Context) error {
	var input services.CatalogInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	item, err := services.NewCatalogService(db.DB).SaveClaimType(c.Request().Context(), middleware.GetAuditContext(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// AdminSaveLetterTypeHandler creates or updates a letter type by code
func AdminSaveLetterTypeHandler(c echo.Context) error {
	var input services.CatalogInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	item, err := services.NewCatalogService(db.DB).SaveLetterType(c.Request().Context(), middleware.GetAuditContext(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// AdminDeleteClaimTypeHandler deletes a claim type and its mappings
func AdminDeleteClaimTypeHandler(c echo.Context) error {
	if err := services.NewCatalogService(db.DB).DeleteClaimType(c.Request().Context(), middleware.GetAuditContext(c), c.Param("code")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminDeleteLetterTypeHandler deletes a letter type and its mappings
func AdminDeleteLetterTypeHandler(c echo.Context) error {
	if err := services.NewCatalogService(db.DB).DeleteLetterType(c.Request().Context(), middleware.GetAuditContext(c), c.Param("code")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminListMappingsHandler lists the letter types mapped to a claim type
func AdminListMappingsHandler(c echo.Context) error {
	mappings, err := services.NewCatalogService(db.DB).ListMappings(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mappings)
}

type mappingRequest struct {
	LetterTypes []string `json:"types_courriers"`
}

// AdminSetMappingsHandler replaces the letter types mapped to a claim type
func AdminSetMappingsHandler(c echo.Context) error {
	var body mappingRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	mappings, err := services.NewCatalogService(db.DB).SetLetterTypesForClaimType(c.Request().Context(), middleware.GetAuditContext(c), c.Param("code"), body.LetterTypes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mappings)
}
