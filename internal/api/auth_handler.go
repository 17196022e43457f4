package api

import (
	"github.com/gin-gonic/gin"

	"todo-me/internal/domain"
	"todo-me/internal/services"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers auth routes with the router.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	CreatedResponse(c, user)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	token, user, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, gin.H{
		"access_token": token,
		"user":         user,
	})
}
