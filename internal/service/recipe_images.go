package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// MaxCoverImageBytes caps uploaded cover images.
const MaxCoverImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UpdateCoverImage stores the image read from r as the cover of recipe id.
// The caller needs update rights on the recipe.
func (s *RecipeService) UpdateCoverImage(ctx context.Context, id int64, r io.Reader, altText *string, p authz.Principal) (*types.RecipeWithCuisineDto, error) {
	recipe, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, authz.Update, recipe); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxCoverImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, NewValidationError("image", "cannot be blank")
	}
	if len(data) > MaxCoverImageBytes {
		return nil, NewValidationError("image", "must be at most 5 MB")
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, NewValidationError("image", "must be a PNG, JPEG, WebP or GIF image")
	}

	name := strconv.FormatInt(id, 10) + ext
	path, err := s.resolveImagePath(name)
	if err != nil {
		return nil, err
	}
	staged, err := stageFile(filepath.Dir(path), data)
	if err != nil {
		return nil, err
	}
	defer os.Remove(staged)

	// The stored file is only replaced once the row update succeeded, and a
	// failed rename rolls the row back.
	previous := recipe.CoverImage.URL
	modified := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(recipe).Updates(map[string]any{
			"cover_image_url":      name,
			"cover_image_alt_text": altText,
			"modified":             modified,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update cover image: %w", err)
		}
		if err := os.Rename(staged, path); err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != "" && previous != name {
		if old, err := s.resolveImagePath(previous); err == nil {
			if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
				log.Warn().Str("component", "recipes").Err(err).Str("path", old).Msg("failed to remove previous cover image")
			}
		}
	}

	var reloaded model.Recipe
	if err := s.db.WithContext(ctx).Preload("Cuisine").First(&reloaded, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload recipe: %w", err)
	}
	out := toRecipeDto(&reloaded, true)
	return &out, nil
}

// stageFile writes data to a temporary file in dir and returns its path.
func stageFile(dir string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return tmp.Name(), nil
}
