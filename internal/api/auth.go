package api

import (
	"net/http"
	"strings"

	"hotelbook/internal/auth"
	"hotelbook/internal/domain"
	"hotelbook/internal/pkg/apperror"
	"hotelbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const capabilityKey = "admin_capability"

// adminRequired validates the bearer token and stores the resulting
// capability on the context for the handler to pass on.
func adminRequired(authService domain.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, apperror.New(http.StatusUnauthorized, "missing Authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, apperror.New(http.StatusUnauthorized, "invalid Authorization header format"))
			return
		}

		capability, err := authService.Authorize(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, mapError(err, "failed to verify token"))
			return
		}

		c.Set(capabilityKey, capability)
		c.Next()
	}
}

// capabilityFrom returns the capability set by adminRequired; the zero value
// when there is none, which every admin operation rejects.
func capabilityFrom(c *gin.Context) auth.AdminCapability {
	if v, ok := c.Get(capabilityKey); ok {
		if capability, ok := v.(auth.AdminCapability); ok {
			return capability
		}
	}
	return auth.AdminCapability{}
}
