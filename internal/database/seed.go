package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/markdown"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// IDSource hands out recipe identifiers.
type IDSource interface {
	Next() int64
}

// ReadCatalog loads a catalog file written by the data generator.
func ReadCatalog(path string) (*types.CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var catalog types.CatalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return &catalog, nil
}

// SeedFromFile imports the catalog at path, owned by ownerID, when the
// recipes table is still empty. It returns the number of recipes imported.
func SeedFromFile(ctx context.Context, db *gorm.DB, ids IDSource, path string, ownerID uuid.UUID) (int, error) {
	catalog, err := ReadCatalog(path)
	if err != nil {
		return 0, err
	}
	return Seed(ctx, db, ids, catalog, ownerID)
}

// Seed imports catalog when no recipes exist yet. Cuisines are matched by name.
func Seed(ctx context.Context, db *gorm.DB, ids IDSource, catalog *types.CatalogFile, ownerID uuid.UUID) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&model.Recipe{}).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if existing > 0 {
		log.Info().Str("component", "seed").Int64("recipes", existing).Msg("recipes already present, skipping seed")
		return 0, nil
	}

	imported := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range catalog.Cuisines {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				continue
			}

			cuisine := model.Cuisine{Name: name}
			if err := tx.Where(model.Cuisine{Name: name}).FirstOrCreate(&cuisine).Error; err != nil {
				return fmt.Errorf("failed to upsert cuisine %s: %w", name, err)
			}

			for _, r := range c.Recipes {
				recipe, err := catalogRecipe(ids.Next(), ownerID, cuisine.ID, r)
				if err != nil {
					return err
				}
				if err := tx.Create(recipe).Error; err != nil {
					return fmt.Errorf("failed to insert recipe %q: %w", r.Name, err)
				}
				imported++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("component", "seed").Int("recipes", imported).Msg("catalog imported")
	return imported, nil
}

func catalogRecipe(id int64, ownerID uuid.UUID, cuisineID int, r types.CatalogRecipe) (*model.Recipe, error) {
	html, err := markdown.Render(r.InstructionsMarkdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render instructions for %q: %w", r.Name, err)
	}

	recipe := &model.Recipe{
		ID:          id,
		OwnerID:     ownerID,
		CuisineID:   cuisineID,
		Name:        r.Name,
		Ingredients: datatypes.JSONSlice[string](r.Ingredients),
		Instructions: model.MarkdownData{
			Markdown: r.InstructionsMarkdown,
			HTML:     html,
		},
		Created: time.Now().UTC(),
	}
	if r.Description != "" {
		desc := r.Description
		recipe.Description = &desc
	}
	if r.CoverImage != nil && r.CoverImage.URL != "" {
		recipe.CoverImage = model.ImageData{URL: r.CoverImage.URL, AltText: r.CoverImage.AltText}
	}
	return recipe, nil
}
