// Package api provides the HTTP surface of the todo-me application.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse returns a standardized success response.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse returns a standardized creation response.
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// UndoableResponse returns a success response carrying an undo token.
// An empty token means the operation succeeded but cannot be undone;
// the field is omitted rather than sent empty.
func UndoableResponse(c *gin.Context, data interface{}, undoToken string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if undoToken != "" {
		body["undo_token"] = undoToken
	}
	c.JSON(http.StatusOK, body)
}
