package handlers

import (
	"net/http"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

// ListTemplatesHandler lists letter templates. Only admins see inactive ones, and only
// when they ask for them with ?tous=1.
func ListTemplatesHandler(c echo.Context) error {
	filters := services.TemplateFilters{
		ClaimType:  c.QueryParam("type_sinistre"),
		LetterType: c.QueryParam("type_courrier"),
		ActiveOnly: !(middleware.IsAdmin(c) && c.QueryParam("tous") == "1"),
	}

	templates, err := services.NewTemplateService(db.DB).List(c.Request().Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, templates)
}

// GetTemplateHandler returns one template
func GetTemplateHandler(c echo.Context) error {
	tmpl, err := services.NewTemplateService(db.DB).Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !tmpl.IsActive && !middleware.IsAdmin(c) {
		return services.ErrTemplateNotFound
	}
	return c.JSON(http.StatusOK, tmpl)
}

// VariableDictionaryHandler returns the automatic variables usable in templates
func VariableDictionaryHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.GetVariableDictionary())
}

// AnalyzeTemplateHandler reports which variables of a template a case fills
func AnalyzeTemplateHandler(c echo.Context) error {
	caseID := c.QueryParam("dossier_id")
	if caseID == "" {
		return badRequest("dossier_id is required")
	}

	tmpl, analysis, err := services.NewTemplateService(db.DB).Analyze(c.Request().Context(), middleware.GetScope(c), c.Param("id"), caseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"modele":  tmpl,
		"analyse": analysis,
	})
}

type renderTemplateRequest struct {
	CaseID string            `json:"dossier_id"`
	Values map[string]string `json:"valeurs"`
}

// RenderTemplateHandler previews a template filled for a case without storing it
func RenderTemplateHandler(c echo.Context) error {
	var body renderTemplateRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if body.CaseID == "" {
		return badRequest("dossier_id is required")
	}

	_, content, err := services.NewTemplateService(db.DB).Render(c.Request().Context(), middleware.GetScope(c), c.Param("id"), body.CaseID, body.Values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"contenu": content})
}

// AdminCreateTemplateHandler creates a template
func AdminCreateTemplateHandler(c echo.Context) error {
	var input services.TemplateInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	tmpl, err := services.NewTemplateService(db.DB).Create(c.Request().Context(), middleware.GetAuditContext(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tmpl)
}

// AdminUpdateTemplateHandler replaces a template
func AdminUpdateTemplateHandler(c echo.Context) error {
	var input services.TemplateInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}

	tmpl, err := services.NewTemplateService(db.DB).Update(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tmpl)
}

// AdminDeleteTemplateHandler deletes a template
func AdminDeleteTemplateHandler(c echo.Context) error {
	if err := services.NewTemplateService(db.DB).Delete(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
