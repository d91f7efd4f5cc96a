package handlers

import (
	"errors"
	"net/http"

	"reclamassur/db"
	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
)

// WebhookSignatureHeader carries the hex HMAC-SHA256 of the raw webhook body
const WebhookSignatureHeader = "X-Webhook-Signature"

// ListMyPaymentsHandler lists the current user's payments
func ListMyPaymentsHandler(c echo.Context) error {
	payments, err := services.NewPaymentService(db.DB).ListForUser(c.Request().Context(), middleware.GetCurrentProfile(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// AdminListPaymentsHandler lists payments, optionally by status
func AdminListPaymentsHandler(c echo.Context) error {
	page, size := pageParams(c)
	payments, total, err := services.NewPaymentService(db.DB).ListAll(c.Request().Context(), c.QueryParam("statut"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{Data: payments, Total: total, Page: page, PageSize: size})
}

// AdminCreatePaymentHandler records a payment for a case
func AdminCreatePaymentHandler(c echo.Context) error {
	var input services.PaymentInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	payment, err := services.NewPaymentService(db.DB).Create(c.Request().Context(), middleware.GetAuditContext(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// AdminUpdatePaymentHandler edits a payment
func AdminUpdatePaymentHandler(c echo.Context) error {
	var input services.PaymentInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	payment, err := services.NewPaymentService(db.DB).Update(c.Request().Context(), middleware.GetAuditContext(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// PaymentWebhookHandler is the public endpoint of the payment provider
func PaymentWebhookHandler(c echo.Context) error {
	payload, err := readBody(c)
	if err != nil {
		return badRequest("Unreadable body")
	}

	cfg := getConfig(c)
	webhooks := services.NewWebhookService(db.DB, services.NewPaymentService(db.DB), cfg.WebhookSecret).
		RequireSignature(cfg.IsProduction())
	entry, err := webhooks.Process(c.Request().Context(), "payments", payload, c.Request().Header.Get(WebhookSignatureHeader))
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			services.Monitor.TrackRejection(c.RealIP(), services.RejectionInvalidSignature)
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": entry.ID, "status": entry.Status})
}

// AdminListWebhookLogsHandler lists received webhooks
func AdminListWebhookLogsHandler(c echo.Context) error {
	page, size := pageParams(c)
	logs, total, err := services.ListWebhookLogs(db.DB, c.QueryParam("statut"), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageResponse{Data: logs, Total: total, Page: page, PageSize: size})
}
