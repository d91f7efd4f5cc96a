package handlers

import (
	"net/http"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListCaseLettersHandler lists the letters of a case
func ListCaseLettersHandler(c echo.Context) error {
	letters, err := newLetterService().ListForCase(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letters)
}

type letterFromTemplateRequest struct {
	TemplateID string            `json:"modele_id"`
	Values     map[string]string `json:"valeurs"`
}

// CreateLetterFromTemplateHandler renders a template against a case and stores the result
// as a draft
func CreateLetterFromTemplateHandler(c echo.Context) error {
	var body letterFromTemplateRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if body.TemplateID == "" {
		return badRequest("modele_id is required")
	}

	letter, err := newLetterService().CreateFromTemplate(c.Request().Context(), middleware.GetScope(c), body.TemplateID, c.Param("id"), body.Values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, letter)
}

// GetLetterHandler returns one letter
func GetLetterHandler(c echo.Context) error {
	letter, err := newLetterService().Get(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letter)
}

// ExportLetterPDFHandler downloads the effective letter content as PDF
func ExportLetterPDFHandler(c echo.Context) error {
	if PDFRenderer == nil {
		return NewAPIError(http.StatusServiceUnavailable, "pdf_unavailable", "PDF export is not configured")
	}

	pdf, filename, err := newLetterService().ExportPDF(c.Request().Context(), middleware.GetScope(c), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// AdminListLettersHandler is the review queue, filtered by status (default: awaiting validation)
func AdminListLettersHandler(c echo.Context) error {
	status := c.QueryParam("statut")
	if status == "" {
		status = models.LetterStatusPending
	}
	letters, err := newLetterService().ListByStatus(c.Request().Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letters)
}

// AdminValidateLetterHandler approves a letter as generated
func AdminValidateLetterHandler(c echo.Context) error {
	letter, err := newLetterService().Validate(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letter)
}

type editLetterRequest struct {
	Content string `json:"contenu_final"`
}

// AdminEditLetterHandler stores an edited version of the letter
func AdminEditLetterHandler(c echo.Context) error {
	var body editLetterRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	letter, err := newLetterService().Edit(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), body.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letter)
}

type rejectLetterRequest struct {
	Reason string `json:"motif_rejet"`
}

// AdminRejectLetterHandler rejects a letter with a reason
func AdminRejectLetterHandler(c echo.Context) error {
	var body rejectLetterRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	letter, err := newLetterService().Reject(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, letter)
}

// AdminSendLetterHandler records the postal dispatch and notifies the client
func AdminSendLetterHandler(c echo.Context) error {
	var body services.DispatchInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	letter, err := newLetterService().MarkSent(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), body)
	if err != nil {
		return err
	}

	notifyLetterSent(c, letter)
	return c.JSON(http.StatusOK, letter)
}

func notifyLetterSent(c echo.Context, letter *models.Letter) {
	cfg := getConfig(c)

	var caseRecord models.Case
	if err := db.DB.Preload("Client").First(&caseRecord, "id = ?", letter.CaseID).Error; err != nil || caseRecord.Client == nil {
		zap.L().Warn("dispatch e-mail skipped, client not found", zap.String("dossier_id", letter.CaseID))
		return
	}

	data := services.LetterSentEmailData{
		ClientName: caseRecord.Client.FullName(),
		Insurer:    caseRecord.InsurerName,
		CaseLink:   services.CaseLink(cfg.AppURL, caseRecord.ID),
	}
	if letter.SentAt != nil {
		data.SentAt = services.FormatLongDateFR(*letter.SentAt)
	}
	if letter.TrackingNumber != nil {
		data.TrackingNumber = *letter.TrackingNumber
	}

	email, err := services.BuildLetterSentEmail(caseRecord.Client.Email, data)
	if err != nil {
		zap.L().Error("failed to build dispatch e-mail", zap.Error(err))
		return
	}
	services.SendEmailAsync(cfg, email)
}
