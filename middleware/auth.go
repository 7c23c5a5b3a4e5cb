package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/utils"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"

	// AccessTokenCookie carries the refreshed token minted on cart mutations.
	AccessTokenCookie = "access_token"
)

type TokenValidator interface {
	ValidateToken(token string) (*utils.Claims, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.Response{
		Success: false,
		Message: message,
		Error:   &message,
		Data:    gin.H{},
	})
}

// AuthMiddleware accepts a bearer token, falling back to the access_token cookie.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			return cookie, true
		}
		abort(c, http.StatusUnauthorized, "Authorization header required")
		return "", false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		abort(c, http.StatusUnauthorized, "Invalid authorization header format")
		return "", false
	}
	return tokenParts[1], true
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists {
			abort(c, http.StatusForbidden, "User role not found")
			return
		}

		if role != models.RoleAdmin {
			abort(c, http.StatusForbidden, "Access denied. Admin role required")
			return
		}

		c.Next()
	}
}
