package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"brochure-backend/internal/models"
)

const (
	SubjectKey = "auth_subject"
	EmailKey   = "auth_email"
	NameKey    = "auth_name"
)

// AuthMiddleware verifies a Supabase HS256 access token and stores its identity claims
// on the context. There is no unauthenticated fallback.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abortUnauthorized(c, "empty token", "")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if jwtSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			// Supabase JWT secret is used directly as the signing key
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
		if err != nil {
			abortUnauthorized(c, "invalid token", tokenErrorMessage(err))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abortUnauthorized(c, "invalid token claims", "")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			abortUnauthorized(c, "missing user id in token", "")
			return
		}

		email, _ := claims["email"].(string)
		c.Set(SubjectKey, sub)
		c.Set(EmailKey, email)
		c.Set(NameKey, nameClaim(claims))
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "token is missing an expiration"
	default:
		return err.Error()
	}
}

// Supabase puts profile data under user_metadata.
func nameClaim(claims jwt.MapClaims) string {
	meta, ok := claims["user_metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"full_name", "name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: msg, Message: detail})
}
