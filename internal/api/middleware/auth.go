// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-me/internal/services"
)

// UserIDContextKey is the key used to store the authenticated user ID
// in the request context.
const UserIDContextKey = "user_id"

// AuthMiddleware provides authentication middleware functionality.
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth requires a valid bearer token and stores the user ID in
// the context for downstream handlers.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "MISSING_TOKEN", "Authorization header with bearer token is required")
			return
		}
		userID, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired access token")
			return
		}
		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": map[string]interface{}{
			"type":    "AUTHENTICATION_ERROR",
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID returns the authenticated user ID stored by RequireAuth.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserIDContextKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
