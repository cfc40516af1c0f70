package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brochure-backend/internal/apperrors"
	"brochure-backend/internal/models"
)

const UserKey = "user"

type UserResolver interface {
	Resolve(ctx context.Context, authSubject, email, name string) (*models.User, error)
}

// ResolveUser maps the verified identity onto a user row, creating it on first sight.
// It must run after AuthMiddleware.
func ResolveUser(users UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Resolve(c.Request.Context(), c.GetString(SubjectKey), c.GetString(EmailKey), c.GetString(NameKey))
		if err != nil {
			logger.Error("failed to resolve user", zap.String("subject", c.GetString(SubjectKey)), zap.Error(err))
			c.AbortWithStatusJSON(apperrors.HTTPStatus(err), models.ErrorResponse{
				Error:   "failed to resolve user",
				Message: err.Error(),
			})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by ResolveUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// RequireUser is CurrentUser for handlers: it writes a 401 when no user is present.
func RequireUser(c *gin.Context) (*models.User, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthenticated"})
		return nil, false
	}
	return user, true
}
