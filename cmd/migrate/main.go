package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/idgen"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
	"github.com/pageza/recipe-catalog/backend/internal/server"
)

var migrationsFlag = &cli.StringFlag{
	Name:    "dir",
	Usage:   "Directory holding SQL migrations",
	Value:   "migrations",
	Sources: cli.EnvVars("MIGRATIONS_DIR"),
}

func main() {
	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the recipe catalog database",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply schema migrations",
				Flags:  []cli.Flag{migrationsFlag},
				Action: up,
			},
			{
				Name:  "seed",
				Usage: "Import a generated catalog into an empty database",
				Flags: []cli.Flag{
					migrationsFlag,
					&cli.StringFlag{
						Name:    "data",
						Usage:   "Catalog file written by datagen",
						Value:   "generated/data.json",
						Sources: cli.EnvVars("SEED_DATA_FILE"),
					},
					&cli.StringFlag{
						Name:     "admin-email",
						Usage:    "Administrator that owns the seeded recipes",
						Sources:  cli.EnvVars("ADMIN_EMAIL"),
						Required: true,
					},
					&cli.StringFlag{
						Name:    "admin-password",
						Usage:   "Password used when the administrator has to be created",
						Sources: cli.EnvVars("ADMIN_PASSWORD"),
					},
				},
				Action: seed,
			},
			{
				Name:  "embed",
				Usage: "Compute embeddings for recipes that have none",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch",
						Usage: "Recipes loaded per batch",
						Value: 50,
					},
				},
				Action: embed,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func open() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func up(_ context.Context, cmd *cli.Command) error {
	_, db, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, cmd.String("dir")); err != nil {
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

func seed(ctx context.Context, cmd *cli.Command) error {
	cfg, db, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, cmd.String("dir")); err != nil {
		return err
	}

	svcs, err := server.NewServices(cfg, db)
	if err != nil {
		return err
	}
	admin, err := svcs.Auth.EnsureAdmin(ctx, cmd.String("admin-email"), cmd.String("admin-password"))
	if err != nil {
		return fmt.Errorf("failed to ensure administrator: %w", err)
	}

	ids, err := idgen.New(cfg.GeneratorID)
	if err != nil {
		return err
	}
	n, err := database.SeedFromFile(ctx, db, ids, cmd.String("data"), admin.ID)
	if err != nil {
		return err
	}
	log.Info().Int("recipes", n).Str("owner", admin.ID.String()).Msg("seed finished")
	return nil
}

func embed(ctx context.Context, cmd *cli.Command) error {
	cfg, db, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if !cfg.SemanticSearchEnabled() {
		return fmt.Errorf("OPENAI_API_KEY and OPENAI_EMBEDDING_DEPLOYMENT must be set")
	}
	svcs, err := server.NewServices(cfg, db)
	if err != nil {
		return err
	}
	n, err := svcs.Recipes.BackfillEmbeddings(ctx, int(cmd.Int("batch")))
	if err != nil {
		return err
	}
	log.Info().Int("recipes", n).Msg("embeddings computed")
	return nil
}
