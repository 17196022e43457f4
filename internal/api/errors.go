package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-me/internal/domain"
)

// ErrorResponse maps a domain error to an HTTP status and a uniform
// error body. Internal and external-service failures are logged with
// their cause but reported to the client without it.
func ErrorResponse(c *gin.Context, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		slog.Error("unhandled error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"type":    string(domain.InternalError),
				"code":    "INTERNAL_ERROR",
				"message": "An internal error occurred",
			},
		})
		return
	}

	if domainErr.Type == domain.InternalError || domainErr.Type == domain.ExternalServiceError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", domainErr.Code,
			"error", domainErr.Cause)
	}

	body := gin.H{
		"type":    string(domainErr.Type),
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	c.JSON(statusForErrorType(domainErr.Type), gin.H{
		"success": false,
		"error":   body,
	})
}

func statusForErrorType(t domain.ErrorType) int {
	switch t {
	case domain.ValidationError:
		return http.StatusBadRequest
	case domain.AuthenticationError:
		return http.StatusUnauthorized
	case domain.AuthorizationError:
		return http.StatusForbidden
	case domain.NotFoundError:
		return http.StatusNotFound
	case domain.ConflictError:
		return http.StatusConflict
	case domain.ExternalServiceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BindError wraps a request-binding failure in the uniform error body.
func BindError(c *gin.Context, err error) {
	ErrorResponse(c, domain.NewValidationError("INVALID_REQUEST", "Invalid request payload", map[string]interface{}{
		"reason": err.Error(),
	}))
}
