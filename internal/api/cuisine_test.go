package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

func TestCuisineEndpoints(t *testing.T) {
	a := newTestAPI(t)
	admin := a.tokenFor(t, testhelpers.CreateUser(t, a.db, model.RoleAdministrator))
	user := a.tokenFor(t, testhelpers.CreateUser(t, a.db, ""))

	w := a.do(t, http.MethodPost, "/api/v1/cuisines", types.CuisineRequest{Name: "Korean"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/cuisines", types.CuisineRequest{Name: "Korean"}, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	korean := decode[types.CuisineDto](t, w)
	assert.Equal(t, fmt.Sprintf("/api/v1/cuisines/%d", korean.ID), w.Header().Get("Location"))

	w = a.do(t, http.MethodPost, "/api/v1/cuisines", types.CuisineRequest{Name: "korean"}, user)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/cuisines", map[string]string{}, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/cuisines", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.CuisineDto](t, w), 1)

	path := fmt.Sprintf("/api/v1/cuisines/%d", korean.ID)
	w = a.do(t, http.MethodPut, path, types.CuisineRequest{Name: "Korean BBQ"}, user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPut, path, types.CuisineRequest{Name: "Korean BBQ"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Korean BBQ", decode[types.CuisineDto](t, w).Name)

	w = a.do(t, http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
