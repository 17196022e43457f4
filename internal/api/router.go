package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
)

// RouterConfig holds everything the router needs to assemble the API.
type RouterConfig struct {
	Logger         *slog.Logger
	AuthMiddleware *middleware.AuthMiddleware
	AllowedOrigins []string

	Auth     *AuthHandler
	Health   *HealthHandler
	Tasks    *TaskHandler
	Projects *ProjectHandler
	Tags     *TagHandler
	Undo     *UndoHandler
	Batch    *BatchHandler
}

// NewRouter builds the gin engine with all middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(cfg.Logger, "/healthz"))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	cfg.Health.RegisterRoutes(router)

	apiGroup := router.Group("/api")
	cfg.Auth.RegisterRoutes(apiGroup)
	cfg.Tasks.RegisterRoutes(apiGroup, cfg.AuthMiddleware)
	cfg.Projects.RegisterRoutes(apiGroup, cfg.AuthMiddleware)
	cfg.Tags.RegisterRoutes(apiGroup, cfg.AuthMiddleware)
	cfg.Undo.RegisterRoutes(apiGroup, cfg.AuthMiddleware)
	cfg.Batch.RegisterRoutes(apiGroup, cfg.AuthMiddleware)

	return router
}
