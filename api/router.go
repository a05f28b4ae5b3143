package api

import (
	"taskflow/api/middleware"
	"taskflow/api/response"
	"taskflow/api/validation"
	"taskflow/config"
	"taskflow/pkg/errors"
	"taskflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ControllerRegister is implemented by every controller mounted under /api.
type ControllerRegister interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Router Route configuration
type Router struct {
	engine      *gin.Engine
	config      *config.Config
	controllers []ControllerRegister
}

func NewRouter(cfg *config.Config, controllers ...ControllerRegister) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.Register(); err != nil {
		logger.Error("Failed to register request validators", zap.Error(err))
	}

	engine := gin.New()

	// order matters: the request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))
	engine.Use(middleware.ErrorHandlerMiddleware())

	return &Router{
		engine:      engine,
		config:      cfg,
		controllers: controllers,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api")
	for _, c := range r.controllers {
		c.RegisterRoutes(apiGroup)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		response.HandleAppError(c, errors.NotFound("route not found"))
	})

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"tasks":   "/api/tasks",
			"health":  "/api/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
