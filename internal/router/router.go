package router

import (
	"github.com/gin-gonic/gin"

	"cardparse/internal/config"
	"cardparse/internal/handler"
	"cardparse/internal/middleware"
)

// New builds the Gin engine with all routes and middleware registered.
func New(
	cfg *config.Config,
	statementHandler *handler.StatementHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Health endpoints are unauthenticated for orchestration probes.
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimitPerMinute)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(cfg.Auth.APIKeyHeader, cfg.Auth.MasterAPIKey))
	v1.Use(middleware.RateLimit(limiter))
	{
		statements := v1.Group("/statements")
		{
			statements.POST("/parse", statementHandler.Parse)
			statements.GET("/tasks/:id", statementHandler.GetTask)
		}
	}

	return r
}
