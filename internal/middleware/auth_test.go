package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type stubValidator struct {
	tokens map[string]uuid.UUID
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &types.TokenClaims{UserID: id, Username: "cook"}, nil
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()

	router := gin.New()
	router.Use(OptionalAuth(stubValidator{tokens: map[string]uuid.UUID{"good": userID}}))
	var seen authz.Principal
	router.GET("/", func(c *gin.Context) {
		seen = PrincipalFrom(c)
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		status    int
		principal authz.Principal
	}{
		{"no header is anonymous", "", http.StatusNoContent, authz.Anonymous},
		{"valid token", "Bearer good", http.StatusNoContent, authz.NewPrincipal(userID, false)},
		{"lowercase scheme", "bearer good", http.StatusNoContent, authz.NewPrincipal(userID, false)},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, authz.Principal{}},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, authz.Principal{}},
		{"missing token", "Bearer", http.StatusUnauthorized, authz.Principal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = authz.Principal{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.principal, seen)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestPrincipalFrom_DefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, authz.Anonymous, PrincipalFrom(c))

	c.Set(PrincipalKey, "not a principal")
	assert.Equal(t, authz.Anonymous, PrincipalFrom(c))
}
