package handlers

import (
	"reclamassur/config"
	"reclamassur/middleware"

	"github.com/labstack/echo/v4"
)

// ConfigMiddleware makes the configuration available to handlers
func ConfigMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			return next(c)
		}
	}
}

// RegisterRoutes mounts the whole API on e
func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	e.Use(ConfigMiddleware(cfg))

	// Generation function (permissive CORS, open preflight, authenticated POST)
	fn := e.Group("/functions/v1")
	fn.Use(middleware.GenerationRateLimiter.Middleware())
	{
		fn.OPTIONS("/generate-letter", GenerateLetterOptionsHandler)
		fn.POST("/generate-letter", GenerateLetterFunctionHandler, middleware.RequireAuth(cfg.SupabaseJWTSecret))
	}

	// Provider callbacks and diagnostics
	e.POST("/webhooks/payments", PaymentWebhookHandler)
	e.GET("/api/auth/diagnostic", DiagnoseAuthHandler)

	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())
	api.Use(middleware.RequireAuth(cfg.SupabaseJWTSecret))
	api.Use(middleware.AuditContext())
	{
		api.GET("/profil", GetProfileHandler)
		api.PUT("/profil", UpdateProfileHandler)
		api.POST("/invitations/accepter", AcceptInvitationHandler, middleware.InvitationRateLimiter.Middleware())

		api.GET("/dossiers", ListMyCasesHandler)
		api.POST("/dossiers", CreateCaseHandler)
		api.GET("/dossiers/:id", GetCaseHandler)
		api.PUT("/dossiers/:id", UpdateCaseHandler)

		api.GET("/dossiers/:id/documents", ListDocumentsHandler)
		api.POST("/dossiers/:id/documents", UploadDocumentsHandler, middleware.UploadRateLimiter.Middleware())
		api.GET("/documents/:id", DownloadDocumentHandler)
		api.DELETE("/documents/:id", DeleteDocumentHandler)

		api.GET("/dossiers/:id/courriers", ListCaseLettersHandler)
		api.POST("/dossiers/:id/courriers/generer", GenerateCaseLetterHandler, middleware.GenerationRateLimiter.Middleware())
		api.POST("/dossiers/:id/courriers/modele", CreateLetterFromTemplateHandler)
		api.GET("/courriers/:id", GetLetterHandler)
		api.GET("/courriers/:id/pdf", ExportLetterPDFHandler)

		api.GET("/dossiers/:id/echeances", ListCaseDeadlinesHandler)
		api.GET("/paiements", ListMyPaymentsHandler)

		api.GET("/modeles", ListTemplatesHandler)
		api.GET("/modeles/:id", GetTemplateHandler)
		api.GET("/modeles/:id/analyse", AnalyzeTemplateHandler)
		api.POST("/modeles/:id/rendu", RenderTemplateHandler)
		api.GET("/variables", VariableDictionaryHandler)

		api.GET("/types-sinistres", ListClaimTypesHandler)
		api.GET("/types-sinistres/:code/types-courriers", AllowedLetterTypesHandler)
		api.GET("/types-courriers", ListLetterTypesHandler)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/dossiers", AdminListCasesHandler)
		admin.PUT("/dossiers/:id/statut", AdminUpdateCaseStatusHandler)
		admin.DELETE("/dossiers/:id", AdminDeleteCaseHandler)
		admin.POST("/dossiers/:id/echeances", AdminCreateDeadlineHandler)

		admin.GET("/courriers", AdminListLettersHandler)
		admin.POST("/courriers/:id/valider", AdminValidateLetterHandler)
		admin.PUT("/courriers/:id", AdminEditLetterHandler)
		admin.POST("/courriers/:id/rejeter", AdminRejectLetterHandler)
		admin.POST("/courriers/:id/envoyer", AdminSendLetterHandler)

		admin.GET("/echeances", AdminUpcomingDeadlinesHandler)
		admin.PUT("/echeances/:id", AdminUpdateDeadlineHandler)
		admin.PUT("/echeances/:id/statut", AdminSetDeadlineStatusHandler)
		admin.DELETE("/echeances/:id", AdminDeleteDeadlineHandler)

		admin.GET("/paiements", AdminListPaymentsHandler)
		admin.POST("/paiements", AdminCreatePaymentHandler)
		admin.PUT("/paiements/:id", AdminUpdatePaymentHandler)
		admin.GET("/webhooks", AdminListWebhookLogsHandler)

		admin.POST("/modeles", AdminCreateTemplateHandler)
		admin.PUT("/modeles/:id", AdminUpdateTemplateHandler)
		admin.DELETE("/modeles/:id", AdminDeleteTemplateHandler)

		admin.PUT("/types-sinistres", AdminSaveClaimTypeHandler)
		admin.DELETE("/types-sinistres/:code", AdminDeleteClaimTypeHandler)
		admin.GET("/types-sinistres/:code/types-courriers", AdminListMappingsHandler)
		admin.PUT("/types-sinistres/:code/types-courriers", AdminSetMappingsHandler)
		admin.PUT("/types-courriers", AdminSaveLetterTypeHandler)
		admin.DELETE("/types-courriers/:code", AdminDeleteLetterTypeHandler)

		admin.GET("/audit", AdminAuditLogsHandler)
		admin.GET("/audit/:type/:id", AdminTargetHistoryHandler)
		admin.GET("/activite", AdminActivityLogsHandler)
		admin.POST("/invitations", AdminCreateInvitationHandler)
		admin.GET("/administrateurs", AdminListAdminsHandler)
		admin.POST("/roles", AdminGrantRoleHandler)
		admin.DELETE("/roles/:user_id/:role", AdminRevokeRoleHandler)
		admin.GET("/configuration", AdminListConfigurationHandler)
		admin.PUT("/configuration/:key", AdminSetConfigurationHandler)
		admin.GET("/export", AdminExportHandler)
		admin.GET("/securite/alertes", AdminSecurityAlertsHandler)
	}
}
