package api

import (
	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// UndoHandler serves the generic undo endpoint. It peeks at the token
// to decide which orchestrator should redeem it; the orchestrator's
// own consume is still the single atomic removal.
type UndoHandler struct {
	tokens      services.UndoTokenService
	taskUndo    services.TaskUndoService
	projectUndo services.ProjectUndoService
	batch       services.BatchExecutor
}

// NewUndoHandler creates a new undo handler.
func NewUndoHandler(
	tokens services.UndoTokenService,
	taskUndo services.TaskUndoService,
	projectUndo services.ProjectUndoService,
	batch services.BatchExecutor,
) *UndoHandler {
	return &UndoHandler{
		tokens:      tokens,
		taskUndo:    taskUndo,
		projectUndo: projectUndo,
		batch:       batch,
	}
}

// RegisterRoutes registers undo routes with the router.
func (h *UndoHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	undo := router.Group("/undo")
	undo.Use(authMiddleware.RequireAuth())
	{
		undo.GET("/:token", h.PeekUndo)
		undo.POST("/:token", h.ApplyUndo)
	}
}

// PeekUndo handles GET /api/undo/:token requests. It reports what the
// token would reverse without consuming it.
func (h *UndoHandler) PeekUndo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	token := h.tokens.PeekToken(c.Request.Context(), userID, c.Param("token"))
	if token == nil {
		ErrorResponse(c, domain.NewNotFoundError("INVALID_UNDO_TOKEN", "Undo token is invalid, expired, or already used"))
		return
	}
	SuccessResponse(c, gin.H{
		"action":      token.Action,
		"entity_type": token.EntityType,
		"entity_id":   token.EntityID,
		"expires_at":  token.ExpiresAt,
	})
}

// ApplyUndo handles POST /api/undo/:token requests.
func (h *UndoHandler) ApplyUndo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	tokenString := c.Param("token")

	peeked := h.tokens.PeekToken(ctx, userID, tokenString)
	if peeked == nil {
		ErrorResponse(c, domain.NewNotFoundError("INVALID_UNDO_TOKEN", "Undo token is invalid, expired, or already used"))
		return
	}

	switch peeked.EntityType {
	case domain.UndoEntityTask:
		task, err := h.taskUndo.Undo(ctx, userID, tokenString)
		if err != nil {
			ErrorResponse(c, err)
			return
		}
		SuccessResponse(c, task)
	case domain.UndoEntityProject:
		project, err := h.projectUndo.Undo(ctx, userID, tokenString)
		if err != nil {
			ErrorResponse(c, err)
			return
		}
		SuccessResponse(c, project)
	case domain.UndoEntityBatch:
		result, err := h.batch.UndoBatch(ctx, userID, tokenString)
		if err != nil {
			ErrorResponse(c, err)
			return
		}
		SuccessResponse(c, result)
	default:
		ErrorResponse(c, domain.NewConflictError("WRONG_ENTITY_TYPE", "Undo token refers to an unknown entity type"))
	}
}
