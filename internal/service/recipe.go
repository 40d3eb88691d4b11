package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/embedding"
	"github.com/pageza/recipe-catalog/backend/internal/markdown"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// RecipeConfig holds the recipe service settings taken from configuration.
type RecipeConfig struct {
	// ImagesDir is the root that cover image URLs are resolved against.
	ImagesDir string
	// EmbeddingDeployment names the embedding model. Semantic search is off when empty.
	EmbeddingDeployment string
	// DistanceFilter selects which search candidates are kept.
	DistanceFilter embedding.DistanceFilter
	// OwnerMayUpdate lets recipe owners update their own recipes.
	OwnerMayUpdate bool
}

type RecipeService struct {
	db        *gorm.DB
	ids       IDGenerator
	identity  IdentityLookup
	renderer  markdown.Renderer
	embedder  embedding.Provider
	neighbors embedding.NearestNeighbors
	cfg       RecipeConfig
	now       func() time.Time
}

// NewRecipeService wires the recipe service. embedder may be nil, in which
// case search always uses substring matching.
func NewRecipeService(
	db *gorm.DB,
	ids IDGenerator,
	identity IdentityLookup,
	embedder embedding.Provider,
	neighbors embedding.NearestNeighbors,
	cfg RecipeConfig,
) *RecipeService {
	if neighbors == nil {
		neighbors = embedding.NewLinearScan(db)
	}
	if cfg.DistanceFilter.Direction == "" {
		cfg.DistanceFilter = embedding.DistanceFilter{
			Threshold: embedding.DefaultThreshold,
			Direction: embedding.AtLeast,
		}
	}
	return &RecipeService{
		db:        db,
		ids:       ids,
		identity:  identity,
		renderer:  markdown.Default(),
		embedder:  embedder,
		neighbors: neighbors,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of recipes, newest first, optionally restricted to
// the given cuisines.
func (s *RecipeService) List(ctx context.Context, skip, take *int, cuisineIDs []int, withDetails bool) (*types.PagedResult[types.RecipeWithCuisineDto], error) {
	offset, limit, err := resolvePaging(skip, take)
	if err != nil {
		return nil, err
	}

	filter := func(tx *gorm.DB) *gorm.DB {
		if len(cuisineIDs) > 0 {
			return tx.Where("cuisine_id IN ?", cuisineIDs)
		}
		return tx
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Scopes(filter).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []model.Recipe
	err = s.db.WithContext(ctx).
		Scopes(filter).
		Preload("Cuisine").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return &types.PagedResult[types.RecipeWithCuisineDto]{
		Count: count,
		Items: toRecipeDtos(recipes, withDetails),
	}, nil
}

// Get returns the recipe with full details, or nil when it does not exist.
func (s *RecipeService) Get(ctx context.Context, id int64) (*types.RecipeWithCuisineDto, error) {
	recipe, err := s.find(s.db.WithContext(ctx).Preload("Cuisine"), id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dto := toRecipeDto(recipe, true)
	return &dto, nil
}

// GetCoverImagePath resolves the cover image of a recipe to a path under the
// images root. ErrNotFound is returned when the recipe is missing, has no
// image, or the stored URL escapes the images root.
func (s *RecipeService) GetCoverImagePath(ctx context.Context, id int64) (string, error) {
	recipe, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return "", err
	}
	if recipe.CoverImage.IsZero() {
		return "", ErrNotFound
	}
	return s.resolveImagePath(recipe.CoverImage.URL)
}

func (s *RecipeService) resolveImagePath(url string) (string, error) {
	root, err := filepath.Abs(s.cfg.ImagesDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve images directory: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(url))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	return path, nil
}

// Create validates dto, stores a new recipe owned by p and returns it.
func (s *RecipeService) Create(ctx context.Context, dto *types.CreateUpdateRecipeDto, p authz.Principal) (*types.RecipeWithCuisineDto, error) {
	if err := asValidationError(dto.Validate()); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{}
	applyRecipeDto(recipe, dto)

	if err := s.authorize(ctx, p, authz.Create, recipe); err != nil {
		return nil, err
	}

	ownerID, ok := s.identity.CurrentUserID(p)
	if !ok {
		return nil, &AuthorizationError{Operation: authz.Create, Resource: authz.RecipeResource, Anonymous: true}
	}

	recipe.ID = s.ids.Next()
	recipe.OwnerID = ownerID
	recipe.Created = s.now()

	html, err := s.renderer.Render(recipe.Instructions.Markdown)
	if err != nil {
		return nil, err
	}
	recipe.Instructions.HTML = html

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCuisine(tx, recipe.CuisineID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return tx.Preload("Cuisine").First(recipe, recipe.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("component", "recipes").Int64("recipe_id", recipe.ID).Str("owner_id", ownerID.String()).Msg("recipe created")
	out := toRecipeDto(recipe, true)
	return &out, nil
}

// Update replaces the editable fields of recipe id. Existence is checked
// before authorization.
func (s *RecipeService) Update(ctx context.Context, id int64, dto *types.CreateUpdateRecipeDto, p authz.Principal) (*types.RecipeWithCuisineDto, error) {
	if err := asValidationError(dto.Validate()); err != nil {
		return nil, err
	}

	recipe, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, authz.Update, recipe); err != nil {
		return nil, err
	}

	applyRecipeDto(recipe, dto)
	html, err := s.renderer.Render(recipe.Instructions.Markdown)
	if err != nil {
		return nil, err
	}
	recipe.Instructions.HTML = html
	modified := s.now()
	recipe.Modified = &modified

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCuisine(tx, recipe.CuisineID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return tx.Preload("Cuisine").First(recipe, recipe.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("component", "recipes").Int64("recipe_id", id).Msg("recipe updated")
	out := toRecipeDto(recipe, true)
	return &out, nil
}

// Delete removes recipe id. Existence is checked before authorization.
func (s *RecipeService) Delete(ctx context.Context, id int64, p authz.Principal) error {
	recipe, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, authz.Delete, recipe); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(recipe).Error; err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	log.Info().Str("component", "recipes").Int64("recipe_id", id).Msg("recipe deleted")
	return nil
}

// Search ranks recipes by embedding distance when an embedder is
// configured, otherwise it falls back to substring matching on name and
// description.
func (s *RecipeService) Search(ctx context.Context, query string, skip, take *int) (*types.PagedResult[types.RecipeWithCuisineDto], error) {
	offset, limit, err := resolvePaging(skip, take)
	if err != nil {
		return nil, err
	}

	if s.embedder != nil && s.cfg.EmbeddingDeployment != "" {
		metrics.RecipeSearchesTotal.WithLabelValues("semantic").Inc()
		return s.semanticSearch(ctx, query, offset, limit)
	}
	metrics.RecipeSearchesTotal.WithLabelValues("fallback").Inc()
	return s.substringSearch(ctx, query, offset, limit)
}

func (s *RecipeService) semanticSearch(ctx context.Context, query string, offset, limit int) (*types.PagedResult[types.RecipeWithCuisineDto], error) {
	vec, err := s.embedder.Embed(ctx, s.cfg.EmbeddingDeployment, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.neighbors.Search(ctx, vec, s.cfg.DistanceFilter)
	if err != nil {
		return nil, err
	}

	result := &types.PagedResult[types.RecipeWithCuisineDto]{
		Count: int64(len(matches)),
		Items: []types.RecipeWithCuisineDto{},
	}
	if offset >= len(matches) {
		return result, nil
	}
	page := matches[offset:min(offset+limit, len(matches))]

	ids := make([]int64, len(page))
	for i, m := range page {
		ids[i] = m.ID
	}

	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Preload("Cuisine").Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load search results: %w", err)
	}
	byID := make(map[int64]*model.Recipe, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = &recipes[i]
	}

	// Keep distance order; recipes deleted since the scan are dropped.
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			result.Items = append(result.Items, toRecipeDto(r, false))
		}
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *RecipeService) substringSearch(ctx context.Context, query string, offset, limit int) (*types.PagedResult[types.RecipeWithCuisineDto], error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	filter := func(tx *gorm.DB) *gorm.DB {
		return tx.Where(`name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Scopes(filter).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Scopes(filter).
		Preload("Cuisine").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	return &types.PagedResult[types.RecipeWithCuisineDto]{
		Count: count,
		Items: toRecipeDtos(recipes, false),
	}, nil
}

// find loads recipe id through tx, mapping a missing row to ErrNotFound.
func (s *RecipeService) find(tx *gorm.DB, id int64) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := tx.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// authorize applies the recipe policy, resolving the admin role only when
// the decision depends on it.
func (s *RecipeService) authorize(ctx context.Context, p authz.Principal, op authz.Operation, recipe *model.Recipe) error {
	if p.Authenticated && (op == authz.Update || op == authz.Delete) {
		admin, err := s.identity.IsAdmin(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to resolve role: %w", err)
		}
		p.Admin = admin
	}

	policy := authz.Policy{OwnerMayUpdate: s.cfg.OwnerMayUpdate}
	if !policy.Authorize(p, authz.RecipeResource, op, recipe.OwnerID) {
		return &AuthorizationError{Operation: op, Resource: authz.RecipeResource, Anonymous: !p.Authenticated}
	}
	return nil
}

func requireCuisine(tx *gorm.DB, id int) error {
	var count int64
	if err := tx.Model(&model.Cuisine{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check cuisine: %w", err)
	}
	if count == 0 {
		return NewValidationError("cuisineId", "cuisine does not exist")
	}
	return nil
}
