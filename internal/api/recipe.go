package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// RecipeService is the subset of service.RecipeService the handlers use.
type RecipeService interface {
	List(ctx context.Context, skip, take *int, cuisineIDs []int, withDetails bool) (*types.PagedResult[types.RecipeWithCuisineDto], error)
	Get(ctx context.Context, id int64) (*types.RecipeWithCuisineDto, error)
	GetCoverImagePath(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, dto *types.CreateUpdateRecipeDto, p authz.Principal) (*types.RecipeWithCuisineDto, error)
	Update(ctx context.Context, id int64, dto *types.CreateUpdateRecipeDto, p authz.Principal) (*types.RecipeWithCuisineDto, error)
	Delete(ctx context.Context, id int64, p authz.Principal) error
	Search(ctx context.Context, query string, skip, take *int) (*types.PagedResult[types.RecipeWithCuisineDto], error)
	UpdateCoverImage(ctx context.Context, id int64, r io.Reader, altText *string, p authz.Principal) (*types.RecipeWithCuisineDto, error)
}

type RecipeHandler struct {
	recipes RecipeService
}

func NewRecipeHandler(recipes RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes mounts the recipe endpoints. mutating runs before every
// write handler.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutating...), handler)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/coverImage", h.GetCoverImage)
		recipes.PUT("/:id/coverImage", write(h.UpdateCoverImage)...)
		recipes.POST("", write(h.CreateRecipe)...)
		recipes.PUT("/:id", write(h.UpdateRecipe)...)
		recipes.DELETE("/:id", write(h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	skip, take, err := paging(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cuisineIDs, err := intList(c, "cuisineIds")
	if err != nil {
		respondError(c, err)
		return
	}
	withDetails, err := optionalBool(c, "withDetails")
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.recipes.List(c.Request.Context(), skip, take, cuisineIDs, withDetails)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		badRequest(c, "query", "cannot be blank")
		return
	}
	skip, take, err := paging(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.recipes.Search(c.Request.Context(), query, skip, take)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if recipe == nil {
		respondError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetCoverImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	path, err := h.recipes.GetCoverImagePath(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		respondError(c, service.ErrNotFound)
		return
	}
	c.File(path)
}

// UpdateCoverImage accepts either a multipart form with an "image" file and
// optional "altText" field, or the raw image as the request body with
// altText as a query parameter.
func (h *RecipeHandler) UpdateCoverImage(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var (
		body    io.Reader = c.Request.Body
		altText *string
	)
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		body = f
		if v, ok := c.GetPostForm("altText"); ok && v != "" {
			altText = &v
		}
	} else if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingFile) {
		badRequest(c, "image", "could not read upload")
		return
	}
	if altText == nil {
		if v := c.Query("altText"); v != "" {
			altText = &v
		}
	}

	recipe, err := h.recipes.UpdateCoverImage(c.Request.Context(), id, body, altText, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var dto types.CreateUpdateRecipeDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "body", "invalid JSON: "+err.Error())
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), &dto, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/api/v1/recipes/"+strconv.FormatInt(recipe.ID, 10))
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var dto types.CreateUpdateRecipeDto
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "body", "invalid JSON: "+err.Error())
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, &dto, middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, middleware.PrincipalFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
