package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-generator/discovery/internal/auth"
	"github.com/octobees/leads-generator/discovery/internal/config"
	"github.com/octobees/leads-generator/discovery/internal/handler"
	"github.com/octobees/leads-generator/discovery/internal/metrics"
	middlewarepkg "github.com/octobees/leads-generator/discovery/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Leads       *handler.LeadsHandler
	Discover    *handler.DiscoverHandler
	AdminUpload *handler.AdminUploadHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{
			"status":               "ok",
			"providers_configured": cfg.ProvidersConfigured(),
		})
	})
	e.GET("/metrics", metrics.Handler())

	e.POST("/auth/token", handlers.Auth.Token)
	e.GET("/leads", handlers.Leads.List)
	e.GET("/leads/stats", handlers.Leads.Stats)
	e.GET("/leads/quality", handlers.Leads.Quality)
	e.GET("/leads/export", handlers.Leads.Export)
	e.GET("/directories", handlers.Leads.Directories)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	operator := secured.Group("", middlewarepkg.RequireRole(auth.RoleOperator))
	discoverLimit := middlewarepkg.RateLimiter(cfg.RateLimitDiscover)
	operator.POST("/discover", handlers.Discover.Discover, discoverLimit)
	operator.POST("/discover/prompt", handlers.Discover.Prompt, discoverLimit)
	operator.POST("/leads/verify", handlers.Leads.Verify)

	admin := secured.Group("", middlewarepkg.RequireRole(auth.RoleAdmin))
	admin.DELETE("/leads", handlers.Leads.Clear)
	admin.POST("/admin/upload-csv", handlers.AdminUpload.UploadCSV)
}
