package server

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/embedding"
	"github.com/pageza/recipe-catalog/backend/internal/idgen"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

// Search backends selectable through configuration.
const (
	SearchBackendLinear   = "linear"
	SearchBackendPgvector = "pgvector"
)

// NewServices builds the application services from cfg.
func NewServices(cfg *config.Config, db *gorm.DB) (Services, error) {
	ids, err := idgen.New(cfg.GeneratorID)
	if err != nil {
		return Services{}, fmt.Errorf("failed to create id generator: %w", err)
	}

	var embedder embedding.Provider
	provider, err := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEndpoint)
	switch {
	case errors.Is(err, embedding.ErrUnavailable):
		log.Info().Str("component", "search").Msg("no embedding provider configured, search uses substring matching")
	case err != nil:
		return Services{}, err
	default:
		embedder = provider
	}

	var neighbors embedding.NearestNeighbors
	if cfg.SearchBackend == SearchBackendPgvector {
		if cfg.DBDriver != config.DriverPostgres {
			return Services{}, fmt.Errorf("search backend %q requires the %s driver", SearchBackendPgvector, config.DriverPostgres)
		}
		neighbors = embedding.NewPgvectorSearch(db)
	} else {
		neighbors = embedding.NewLinearScan(db)
	}

	auth := service.NewAuthService(db, cfg.JWTSecret)
	return Services{
		Auth: auth,
		Recipes: service.NewRecipeService(db, ids, auth, embedder, neighbors, service.RecipeConfig{
			ImagesDir:           cfg.ImagesDir,
			EmbeddingDeployment: cfg.EmbeddingDeployment,
			DistanceFilter: embedding.DistanceFilter{
				Threshold: embedding.DefaultThreshold,
				Direction: embedding.ParseDirection(cfg.SearchDistanceFilter),
			},
			OwnerMayUpdate: cfg.RecipeOwnerUpdate,
		}),
		Cuisines: service.NewCuisineService(db, auth),
	}, nil
}
