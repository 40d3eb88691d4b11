package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

type CuisineService interface {
	List(ctx context.Context) ([]types.CuisineDto, error)
	Get(ctx context.Context, id int) (*types.CuisineDto, error)
	Create(ctx context.Context, req *types.CuisineRequest, p authz.Principal) (*types.CuisineDto, error)
	Update(ctx context.Context, id int, req *types.CuisineRequest, p authz.Principal) (*types.CuisineDto, error)
	Delete(ctx context.Context, id int, p authz.Principal) error
}

type CuisineHandler struct {
	cuisines CuisineService
}

func NewCuisineHandler(cuisines CuisineService) *CuisineHandler {
	return &CuisineHandler{cuisines: cuisines}
}

func (h *CuisineHandler) RegisterRoutes(router *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), handler)
	}

	cuisines := router.Group("/cuisines")
	{
		cuisines.GET("", h.ListCuisines)
		cuisines.GET("/:id", h.GetCuisine)
		cuisines.POST("", write(h.CreateCuisine)...)
		cuisines.PUT("/:id", write(h.UpdateCuisine)...)
		cuisines.DELETE("/:id", write(h.DeleteCuisine)...)
	}
}

func (h *CuisineHandler) ListCuisines(c *gin.Context) {
	cuisines, err := h.cuisines.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cuisines)
}

func (h *CuisineHandler) GetCuisine(c *gin.Context) {
	id, ok := cuisineID(c)
	if !ok {
		return
	}
	cuisine, err := h.cuisines.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if cuisine == nil {
		respondError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, cuisine)
}

func (h *CuisineHandler) CreateCuisine(c *gin.Context) {
	var req types.CuisineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name", err.Error())
		return
	}
	cuisine, err := h.cuisines.Create(c.Request.Context(), &req, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/api/v1/cuisines/"+strconv.Itoa(cuisine.ID))
	c.JSON(http.StatusCreated, cuisine)
}

func (h *CuisineHandler) UpdateCuisine(c *gin.Context) {
	id, ok := cuisineID(c)
	if !ok {
		return
	}
	var req types.CuisineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name", err.Error())
		return
	}
	cuisine, err := h.cuisines.Update(c.Request.Context(), id, &req, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cuisine)
}

func (h *CuisineHandler) DeleteCuisine(c *gin.Context) {
	id, ok := cuisineID(c)
	if !ok {
		return
	}
	if err := h.cuisines.Delete(c.Request.Context(), id, middleware.PrincipalFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
