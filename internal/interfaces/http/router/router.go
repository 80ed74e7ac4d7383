// Package router 提供 HTTP 路由配置
package router

import (
	"handbook-ai-api/internal/config"
	"handbook-ai-api/internal/infrastructure/persistence/redis"
	"handbook-ai-api/internal/interfaces/http/handler"
	"handbook-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Health   *handler.HealthHandler
	Source   *handler.SourceHandler
	Handbook *handler.HandbookHandler
	Document *handler.DocumentHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  *redis.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter *redis.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, r.limiter))
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	{
		sources := v1.Group("/sources")
		{
			sources.POST("", r.handlers.Source.IngestSource)
			sources.DELETE("/:name", r.handlers.Source.DeleteSource)
		}

		handbooks := v1.Group("/handbooks")
		{
			handbooks.POST("", r.handlers.Handbook.CreateHandbook)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("", r.handlers.Handbook.ListJobs)
			jobs.GET("/:jid", r.handlers.Handbook.GetJob)
			jobs.DELETE("/:jid", r.handlers.Handbook.CancelJob)
		}

		documents := v1.Group("/documents")
		{
			documents.GET("", r.handlers.Document.ListDocuments)
			documents.GET("/:did", r.handlers.Document.GetDocument)
		}
	}
}
