// Package api exposes the audio description service over HTTP.
package api

import (
	"net/http"

	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"

	"github.com/book-expert/audio-description-service/internal/core"
)

// Router wires the HTTP routes to their handlers.
type Router struct {
	engine   *gin.Engine
	handlers *DescriptionHandlers
	log      *logger.Logger
}

// NewRouter creates the API router.
func NewRouter(
	generator core.DescriptionGenerator,
	usage core.UsageStore,
	sessions SessionProvider,
	log *logger.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := &Router{
		engine:   engine,
		handlers: NewDescriptionHandlers(generator, usage, sessions, log),
		log:      log,
	}

	router.setupRoutes()

	return router
}

func (r *Router) setupRoutes() {
	v1 := r.engine.Group("/api/v1")

	v1.GET("/health", r.healthCheck)

	descriptions := v1.Group("/descriptions")
	{
		descriptions.POST("", r.handlers.CreateDescription)
		descriptions.GET("/quota", r.handlers.GetQuota)
	}
}

// Engine returns the underlying gin engine, for serving and for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
