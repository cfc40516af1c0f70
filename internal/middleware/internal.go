package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"brochure-backend/internal/models"
)

const InternalTokenHeader = "X-Internal-Token"

// InternalToken guards trusted server-to-server routes with a shared secret.
// With no token configured every request is rejected.
func InternalToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid internal token"})
			return
		}
		c.Next()
	}
}
