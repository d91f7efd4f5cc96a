package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"reclamassur/services"
	"reclamassur/services/ai"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// APIError is the JSON error body of every failed API request
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// NewAPIError builds an APIError
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func badRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, "bad_request", message)
}

// toAPIError maps service errors to HTTP statuses
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{Status: httpErr.Code, Code: codeForStatus(httpErr.Code), Message: fmt.Sprint(httpErr.Message)}
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		return NewAPIError(http.StatusForbidden, "forbidden", "Access denied")
	case errors.Is(err, services.ErrCaseNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrLetterNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrDeadlineNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrCatalogEntryMissing):
		return NewAPIError(http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrMissingProfile):
		return NewAPIError(http.StatusUnprocessableEntity, "missing_profile", err.Error())
	case errors.Is(err, services.ErrValidation):
		return NewAPIError(http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, services.ErrInvalidLetterType),
		errors.Is(err, services.ErrInvalidStatus):
		return badRequest(err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		return NewAPIError(http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, services.ErrInvitationInvalid):
		return NewAPIError(http.StatusBadRequest, "invitation_invalid", err.Error())
	case errors.Is(err, services.ErrInvalidSignature):
		return NewAPIError(http.StatusUnauthorized, "invalid_signature", err.Error())
	case errors.Is(err, ai.ErrNoProviderConfigured):
		return NewAPIError(http.StatusServiceUnavailable, "no_ai_provider", err.Error())
	}
	return NewAPIError(http.StatusInternalServerError, "internal_error", "Internal server error")
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "error"
}

// ErrorHandler is installed as Echo's HTTPErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(apiErr.Status)
	} else {
		err = c.JSON(apiErr.Status, apiErr)
	}
	if err != nil {
		zap.L().Warn("failed to write error response", zap.Error(err))
	}
}
