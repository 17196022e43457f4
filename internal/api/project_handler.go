package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	projectService services.ProjectService
	undoService    services.ProjectUndoService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService services.ProjectService, undoService services.ProjectUndoService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		undoService:    undoService,
	}
}

// RegisterRoutes registers project routes with the router.
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	projects := router.Group("/projects")
	projects.Use(authMiddleware.RequireAuth())
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.PATCH("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.DeleteProject)

		projects.POST("/:id/archive", h.ArchiveProject)
		projects.POST("/:id/unarchive", h.UnarchiveProject)

		projects.POST("/:id/undo/:token", h.UndoProjectChange)
	}
}

// ListProjects handles GET /api/projects requests.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	projects, err := h.projectService.ListProjects(c.Request.Context(), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"projects": projects})
}

// CreateProject handles POST /api/projects requests.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	project, err := h.projectService.CreateProject(c.Request.Context(), req, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, project)
}

// GetProject handles GET /api/projects/:id requests.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, project)
}

// UpdateProject handles PATCH /api/projects/:id requests.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	ctx := c.Request.Context()
	project, prev, err := h.projectService.UpdateProject(ctx, c.Param("id"), req, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateUpdateUndoToken(ctx, userID, project.ID, prev)
	UndoableResponse(c, project, undoToken)
}

// DeleteProject handles DELETE /api/projects/:id requests.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	projectID := c.Param("id")
	snap, err := h.projectService.DeleteProject(ctx, projectID, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateDeleteUndoToken(ctx, userID, projectID, snap)
	UndoableResponse(c, gin.H{"deleted": true, "project_id": projectID}, undoToken)
}

// ArchiveProject handles POST /api/projects/:id/archive requests.
func (h *ProjectHandler) ArchiveProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	project, prev, err := h.projectService.ArchiveProject(ctx, c.Param("id"), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateArchiveUndoToken(ctx, userID, project.ID, prev)
	UndoableResponse(c, project, undoToken)
}

// UnarchiveProject handles POST /api/projects/:id/unarchive requests.
func (h *ProjectHandler) UnarchiveProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	project, prev, err := h.projectService.UnarchiveProject(ctx, c.Param("id"), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	undoToken := h.undoService.CreateArchiveUndoToken(ctx, userID, project.ID, prev)
	UndoableResponse(c, project, undoToken)
}

// UndoProjectChange handles POST /api/projects/:id/undo/:token
// requests. The message distinguishes whether the undo re-archived or
// unarchived the project.
func (h *ProjectHandler) UndoProjectChange(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	ctx := c.Request.Context()
	token := c.Param("token")

	// Advisory peek for the message; the Undo call below is what
	// actually consumes the token.
	peeked := h.undoService.Peek(ctx, userID, token)
	project, err := h.undoService.Undo(ctx, userID, token)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	message := "Change undone"
	if peeked != nil && peeked.Action == domain.UndoActionArchive {
		if project.Archived {
			message = "Project archived again"
		} else {
			message = "Project unarchived"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    project,
		"message": message,
	})
}
