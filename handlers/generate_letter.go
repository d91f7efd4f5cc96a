package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"reclamassur/middleware"
	"reclamassur/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CORSHeaders are sent on every generate-letter response
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// GenerateLetterResponse is the body of the generate-letter function
type GenerateLetterResponse struct {
	Success bool                        `json:"success"`
	Content string                      `json:"contenu_genere,omitempty"`
	Context *services.GenerationContext `json:"context,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

// RunGenerateLetter handles one raw generate-letter request body and returns the status code
// and response. Shared by the HTTP route and the Lambda entry point.
// Cases outside scope read as not found.
func RunGenerateLetter(ctx context.Context, gen *services.LetterGenerator, scope services.Scope, body []byte) (int, GenerateLetterResponse) {
	var req services.GenerationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, GenerateLetterResponse{Error: "Invalid JSON body"}
	}
	if strings.TrimSpace(req.CaseID) == "" || strings.TrimSpace(req.LetterType) == "" {
		return http.StatusBadRequest, GenerateLetterResponse{Error: "dossierId and typeCourrier are required"}
	}

	res, err := gen.Generate(ctx, scope, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidLetterType) {
			status = http.StatusBadRequest
		}
		zap.L().Warn("letter generation failed", zap.String("dossier_id", req.CaseID), zap.Error(err))
		return status, GenerateLetterResponse{Error: err.Error()}
	}
	return http.StatusOK, GenerateLetterResponse{Success: true, Content: res.Content, Context: &res.Context}
}

func setCORSHeaders(c echo.Context) {
	for k, v := range CORSHeaders {
		c.Response().Header().Set(k, v)
	}
}

// GenerateLetterOptionsHandler answers the CORS preflight
func GenerateLetterOptionsHandler(c echo.Context) error {
	setCORSHeaders(c)
	return c.String(http.StatusOK, "ok")
}

// GenerateLetterFunctionHandler is POST /functions/v1/generate-letter, behind RequireAuth
func GenerateLetterFunctionHandler(c echo.Context) error {
	setCORSHeaders(c)

	gen, err := NewLetterGenerator(getConfig(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, GenerateLetterResponse{Error: err.Error()})
	}

	body, err := readBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, GenerateLetterResponse{Error: "Invalid request body"})
	}

	status, resp := RunGenerateLetter(c.Request().Context(), gen, middleware.GetScope(c), body)
	return c.JSON(status, resp)
}

// generateForCaseRequest is the body of the authenticated generation route
type generateForCaseRequest struct {
	LetterType     string `json:"typeCourrier"`
	Tone           string `json:"tone"`
	Length         string `json:"length"`
	PreferredModel string `json:"preferredModel"`
}

// GenerateCaseLetterHandler generates a letter for a case the caller can see and stores it
// as a draft awaiting validation
func GenerateCaseLetterHandler(c echo.Context) error {
	scope := middleware.GetScope(c)
	caseID := c.Param("id")

	var body generateForCaseRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	if _, err := getCaseService().Get(c.Request().Context(), scope, caseID); err != nil {
		return err
	}

	gen, err := NewLetterGenerator(getConfig(c))
	if err != nil {
		return err
	}
	req := services.GenerationRequest{
		CaseID:         caseID,
		LetterType:     body.LetterType,
		Tone:           body.Tone,
		Length:         body.Length,
		PreferredModel: body.PreferredModel,
	}
	res, err := gen.Generate(c.Request().Context(), scope, req)
	if err != nil {
		return err
	}

	letter, err := newLetterService().SaveGenerated(c.Request().Context(), scope, req, res)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"courrier": letter,
		"context":  res.Context,
	})
}
