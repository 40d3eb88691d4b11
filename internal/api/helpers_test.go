package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/idgen"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/router"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

type testAPI struct {
	handler   http.Handler
	db        *gorm.DB
	auth      *service.AuthService
	imagesDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "api-test-secret-0123456789")
	ids, err := idgen.New(1)
	require.NoError(t, err)
	imagesDir := t.TempDir()

	recipes := service.NewRecipeService(db, ids, auth, nil, nil, service.RecipeConfig{ImagesDir: imagesDir})
	cuisines := service.NewCuisineService(db, auth)

	handler := router.SetupRouter(router.Handlers{
		Auth:     api.NewAuthHandler(auth),
		Recipes:  api.NewRecipeHandler(recipes),
		Cuisines: api.NewCuisineHandler(cuisines),
	}, router.Options{
		DB:          db,
		Tokens:      auth,
		CORSOrigins: []string{"http://localhost:5173"},
	})

	return &testAPI{handler: handler, db: db, auth: auth, imagesDir: imagesDir}
}

func (a *testAPI) tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
