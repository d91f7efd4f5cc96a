// Command generate-letter runs the letter generation function as an AWS Lambda
// behind API Gateway. It answers the same contract as POST /functions/v1/generate-letter.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"reclamassur/config"
	"reclamassur/db"
	"reclamassur/handlers"
	"reclamassur/logging"
	"reclamassur/middleware"
	"reclamassur/models"
	"reclamassur/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

type function struct {
	cfg *config.Config
}

func (f *function) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: corsHeaders(), Body: "ok"}, nil
	}

	profile, role, err := middleware.ResolveBearer(ctx, f.cfg.SupabaseJWTSecret, bearerToken(req.Headers))
	if err != nil {
		if errors.Is(err, middleware.ErrMissingToken) || errors.Is(err, middleware.ErrInvalidToken) ||
			errors.Is(err, services.ErrMissingProfile) {
			return respond(http.StatusUnauthorized, handlers.GenerateLetterResponse{Error: "Unauthorized"}), nil
		}
		zap.L().Error("token resolution failed", zap.Error(err))
		return respond(http.StatusInternalServerError, handlers.GenerateLetterResponse{Error: "Internal server error"}), nil
	}

	gen, err := handlers.NewLetterGenerator(f.cfg)
	if err != nil {
		zap.L().Error("letter generator unavailable", zap.Error(err))
		return respond(http.StatusInternalServerError, handlers.GenerateLetterResponse{Error: err.Error()}), nil
	}

	status, body := handlers.RunGenerateLetter(ctx, gen, middleware.ScopeFor(profile, role), []byte(req.Body))
	return respond(status, body), nil
}

// bearerToken reads the Authorization header, whatever case API Gateway delivered it in
func bearerToken(headers map[string]string) string {
	for k, v := range headers {
		if !strings.EqualFold(k, "Authorization") {
			continue
		}
		if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
			return strings.TrimSpace(v[7:])
		}
	}
	return ""
}

func corsHeaders() map[string]string {
	headers := make(map[string]string, len(handlers.CORSHeaders)+1)
	for k, v := range handlers.CORSHeaders {
		headers[k] = v
	}
	return headers
}

func respond(status int, body handlers.GenerateLetterResponse) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Headers: headers, Body: `{"success":false}`}
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(payload)}
}

func main() {
	logger, err := logging.Init(logging.ConfigFromEnv())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	err = db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		zap.L().Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := services.SeedDefaultCatalogs(db.DB); err != nil {
		zap.L().Fatal("Failed to seed catalogs", zap.Error(err))
	}

	f := &function{cfg: cfg}
	lambda.Start(f.handle)
}
