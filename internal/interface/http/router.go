package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wellbeing-index/internal/infra/config"
	"github.com/yanqian/wellbeing-index/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, registry *metrics.Registry) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger, registry),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/api/test", handler.Health)
	router.GET("/metrics", gin.WrapH(registry.Handler()))

	limited := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)
	router.GET("/calculate_ib", limited, handler.Index)

	api := router.Group("/api/v1", limited)
	{
		api.GET("/index", handler.Index)
		api.GET("/assessments/:id", handler.GetAssessment)
		api.POST("/summaries", handler.Summarize)
		api.POST("/summaries/full", handler.FullSummary)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, cfg.HTTP.WriteTimeout, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
