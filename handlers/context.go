package handlers

import (
	"io"
	"strconv"

	"reclamassur/config"
	"reclamassur/db"
	"reclamassur/services"
	"reclamassur/services/ai"

	"github.com/labstack/echo/v4"
)

// Collaborators installed by cmd/server at startup
var (
	AICatalog   *ai.Catalog
	PDFRenderer services.PDFRenderer
)

// ContextKeyConfig is where the server middleware stores the loaded configuration
const ContextKeyConfig = "config"

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get(ContextKeyConfig).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// NewLetterGenerator builds a generator over the installed provider catalog, falling back to
// the embedded default catalog
func NewLetterGenerator(cfg *config.Config) (*services.LetterGenerator, error) {
	catalog := AICatalog
	if catalog == nil {
		var err error
		if catalog, err = ai.LoadCatalog(cfg.AIProvidersFile); err != nil {
			return nil, err
		}
	}
	return services.NewLetterGenerator(db.DB, catalog, ai.CredentialsFromConfig(cfg), cfg.AIRetryBaseDelay), nil
}

func getCaseService() *services.CaseService {
	return services.NewCaseService(db.DB, services.Storage)
}

func getUploadService(c echo.Context) *services.UploadService {
	return services.NewUploadService(db.DB, services.Storage, getConfig(c).UploadPause)
}

func newLetterService() *services.LetterService {
	return services.NewLetterService(db.DB, services.NewTemplateService(db.DB), PDFRenderer)
}

// PageResponse wraps a paginated listing
type PageResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

func bindJSON(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}

func readBody(c echo.Context) ([]byte, error) {
	// 1 MB is far above any JSON body this API accepts
	return io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
}
