package response

import (
	"errors"
	"net/http"

	"hotelbook/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error response. AppErrors pick the status code and may
// add detail fields; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Details) == 0 {
			c.AbortWithStatusJSON(appErr.Code, ErrorResponse{Error: appErr.Message})
			return
		}
		body := gin.H{"error": appErr.Message}
		for k, v := range appErr.Details {
			body[k] = v
		}
		c.AbortWithStatusJSON(appErr.Code, body)
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
