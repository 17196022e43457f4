package api

import (
	"github.com/gin-gonic/gin"

	"todo-me/internal/api/middleware"
	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// TagHandler handles tag-related HTTP requests.
type TagHandler struct {
	tagService services.TagService
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tagService services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// RegisterRoutes registers tag routes with the router.
func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	tags := router.Group("/tags")
	tags.Use(authMiddleware.RequireAuth())
	{
		tags.GET("", h.ListTags)
		tags.POST("", h.CreateTag)
		tags.DELETE("/:id", h.DeleteTag)
	}
}

// ListTags handles GET /api/tags requests.
func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	tags, err := h.tagService.ListTags(c.Request.Context(), userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"tags": tags})
}

// CreateTag handles POST /api/tags requests.
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	var req domain.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), req, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, tag)
}

// DeleteTag handles DELETE /api/tags/:id requests.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewAuthenticationError("USER_NOT_FOUND", "User not found in context"))
		return
	}
	if err := h.tagService.DeleteTag(c.Request.Context(), c.Param("id"), userID); err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{"deleted": true})
}
