package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// Context keys set by OptionalAuth.
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// OptionalAuth resolves a bearer token into the request principal. Requests
// without an Authorization header continue as anonymous; a malformed header
// or an invalid token is rejected with 401.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(PrincipalKey, authz.Anonymous)
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(PrincipalKey, authz.NewPrincipal(claims.UserID, false))
		c.Set(UserIDKey, claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by OptionalAuth, or
// authz.Anonymous when none is set.
func PrincipalFrom(c *gin.Context) authz.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(authz.Principal); ok {
			return p
		}
	}
	return authz.Anonymous
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: msg})
}
