package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// TaskHandler handles task-related HTTP requests. Every reversible
// mutation answers with an undo_token alongside the entity.
type TaskHandler struct {
	taskService services.TaskService
	undoService services.TaskUndoService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService services.TaskService, undoService services.TaskUndoService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		undoService: undoService,
	}
}

// RegisterRoutes registers task routes with the router.
func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	tasks := router.Group("/tasks")
	tasks.Use(authMiddleware.RequireAuth())
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)

		tasks.PUT("/:id/status", h.UpdateTaskStatus)
		tasks.PUT("/:id/schedule", h.RescheduleTask)

		tasks.POST("/:id/undo/:token", h.UndoTaskChange)
	}
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID, offset, limit)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"tasks": tasks})
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	task, err := h.taskService.CreateTask(c.Request.Context(), req, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, task)
}

// GetTask handles GET /api/tasks/:id requests.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, task)
}

// UpdateTask handles PATCH /api/tasks/:id requests.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	ctx := c.Request.Context()
	task, prev, err := h.taskService.UpdateTask(ctx, c.Param("id"), req, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateUpdateUndoToken(ctx, userID, task.ID, prev)
	UndoableResponse(c, task, undoToken)
}

// DeleteTask handles DELETE /api/tasks/:id requests.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	taskID := c.Param("id")
	snap, err := h.taskService.DeleteTask(ctx, taskID, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateDeleteUndoToken(ctx, userID, taskID, snap)
	UndoableResponse(c, gin.H{"deleted": true, "task_id": taskID}, undoToken)
}

// statusUpdateRequest is the payload for changing a task's status.
type statusUpdateRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required"`
}

// UpdateTaskStatus handles PUT /api/tasks/:id/status requests.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	ctx := c.Request.Context()
	task, prev, err := h.taskService.UpdateTaskStatus(ctx, c.Param("id"), req.Status, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateStatusUndoToken(ctx, userID, task.ID, prev)
	UndoableResponse(c, task, undoToken)
}

// RescheduleTask handles PUT /api/tasks/:id/schedule requests.
func (h *TaskHandler) RescheduleTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	ctx := c.Request.Context()
	task, prev, err := h.taskService.RescheduleTask(ctx, c.Param("id"), req.DueDate, req.DueTime, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateUpdateUndoToken(ctx, userID, task.ID, prev)
	UndoableResponse(c, task, undoToken)
}

// UndoTaskChange handles POST /api/tasks/:id/undo/:token requests. The
// typed task path accepts any task-kind token; the generic /undo
// endpoint also serves these tokens.
func (h *TaskHandler) UndoTaskChange(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	task, err := h.undoService.Undo(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
		"message": "Change undone",
	})
}
