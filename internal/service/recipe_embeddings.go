package service

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"github.com/pageza/recipe-catalog/backend/internal/embedding"
	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// EmbeddingText is the text a recipe's embedding is computed from.
func EmbeddingText(r *model.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Description != nil && *r.Description != "" {
		b.WriteString("\n")
		b.WriteString(*r.Description)
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("\nIngredients: ")
		b.WriteString(strings.Join(r.Ingredients, ", "))
	}
	return b.String()
}

// BackfillEmbeddings computes embeddings for recipes that have none, batch
// at a time, and returns how many were stored.
func (s *RecipeService) BackfillEmbeddings(ctx context.Context, batch int) (int, error) {
	if s.embedder == nil || s.cfg.EmbeddingDeployment == "" {
		return 0, embedding.ErrUnavailable
	}
	if batch <= 0 {
		batch = 50
	}

	total := 0
	var lastID int64
	for {
		var recipes []model.Recipe
		err := s.db.WithContext(ctx).
			Where("embedding IS NULL AND id > ?", lastID).
			Order("id ASC").
			Limit(batch).
			Find(&recipes).Error
		if err != nil {
			return total, fmt.Errorf("failed to load recipes without embeddings: %w", err)
		}
		if len(recipes) == 0 {
			return total, nil
		}

		for i := range recipes {
			r := &recipes[i]
			lastID = r.ID

			vec, err := s.embedder.Embed(ctx, s.cfg.EmbeddingDeployment, EmbeddingText(r))
			if err != nil {
				return total, fmt.Errorf("failed to embed recipe %d: %w", r.ID, err)
			}
			v := pgvector.NewVector(vec)
			if err := s.db.WithContext(ctx).Model(r).UpdateColumn("embedding", &v).Error; err != nil {
				return total, fmt.Errorf("failed to store embedding for recipe %d: %w", r.ID, err)
			}
			total++
		}

		log.Info().Str("component", "recipes").Int("embedded", total).Msg("embedding backfill progress")
	}
}
