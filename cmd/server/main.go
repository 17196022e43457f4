// Package main provides the entry point for the todo-me server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"todo-me/internal/api"
	"todo-me/internal/api/middleware"
	"todo-me/internal/config"
	"todo-me/internal/repository"
	"todo-me/internal/services"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.Open(cfg.GetDatabasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Undo degrades gracefully without the token store, so this
		// is a warning, not a startup failure.
		logger.Warn("token store unreachable at startup", "addr", cfg.GetRedisAddr(), "error", err)
	}

	router := buildRouter(cfg, logger, db, redisClient)

	server := &http.Server{
		Addr:         ":" + cfg.GetServerPort(),
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "environment", cfg.GetEnvironment())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	var level slog.Level
	switch cfg.GetLogLevel() {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func buildRouter(
	cfg *config.AppConfig,
	logger *slog.Logger,
	db *repository.DB,
	redisClient *redis.Client,
) *gin.Engine {
	taskRepo := repository.NewSQLiteTaskRepository(db)
	projectRepo := repository.NewSQLiteProjectRepository(db)
	tagRepo := repository.NewSQLiteTagRepository(db)
	userRepo := repository.NewSQLiteUserRepository(db)
	txManager := repository.NewTransactionManager(db)

	tokenStore := services.NewRedisTokenStore(redisClient, "undo")
	tokens := services.NewUndoTokenService(tokenStore, logger)

	taskSnapshotter := services.NewTaskSnapshotter(projectRepo, tagRepo)
	projectSnapshotter := services.NewProjectSnapshotter()

	taskService := services.NewTaskService(taskRepo, projectRepo, tagRepo, taskSnapshotter)
	projectService := services.NewProjectService(projectRepo, projectSnapshotter)
	tagService := services.NewTagService(tagRepo)
	authService := services.NewAuthService(userRepo, cfg.GetJWTSecret(), cfg.GetJWTExpiration())

	taskUndo := services.NewTaskUndoService(tokens, taskRepo, taskSnapshotter, logger, cfg.GetUndoTTL())
	projectUndo := services.NewProjectUndoService(tokens, projectRepo, projectSnapshotter, logger, cfg.GetUndoTTL())
	batchExecutor := services.NewBatchExecutor(taskService, taskUndo, tokens, txManager, logger, cfg.GetBatchUndoTTL())

	healthChecks := map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping(ctx) },
		"token_store": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}

	return api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
		AllowedOrigins: cfg.GetAllowedOrigins(),
		Auth:           api.NewAuthHandler(authService),
		Health:         api.NewHealthHandler(healthChecks),
		Tasks:          api.NewTaskHandler(taskService, taskUndo),
		Projects:       api.NewProjectHandler(projectService, projectUndo),
		Tags:           api.NewTagHandler(tagService),
		Undo:           api.NewUndoHandler(tokens, taskUndo, projectUndo, batchExecutor),
		Batch:          api.NewBatchHandler(batchExecutor),
	})
}
