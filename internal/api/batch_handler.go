package api

import (
	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// BatchHandler handles batch execution requests.
type BatchHandler struct {
	executor services.BatchExecutor
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(executor services.BatchExecutor) *BatchHandler {
	return &BatchHandler{executor: executor}
}

// RegisterRoutes registers batch routes with the router.
func (h *BatchHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	batch := router.Group("/batch")
	batch.Use(authMiddleware.RequireAuth())
	{
		batch.POST("", h.ExecuteBatch)
		batch.POST("/undo/:token", h.UndoBatch)
	}
}

// batchRequest is the payload for executing a batch of operations.
type batchRequest struct {
	Operations []domain.BatchOperation `json:"operations" binding:"required,min=1"`
	Atomic     bool                    `json:"atomic"`
}

// ExecuteBatch handles POST /api/batch requests.
func (h *BatchHandler) ExecuteBatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	result, err := h.executor.Execute(c.Request.Context(), userID, req.Operations, req.Atomic)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, result)
}

// UndoBatch handles POST /api/batch/undo/:token requests.
func (h *BatchHandler) UndoBatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	result, err := h.executor.UndoBatch(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, result)
}
