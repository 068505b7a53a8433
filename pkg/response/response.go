package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every failed API response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes body as JSON with status (200 when zero).
func Success(c *gin.Context, status int, body any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, body)
}

// Error writes an ErrorBody with status (400 when zero) and aborts the chain.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     message,
		RequestID: c.GetString("request_id"),
	})
}
