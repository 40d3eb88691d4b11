package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/datagen"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
)

func main() {
	cmd := &cli.Command{
		Name:   "datagen",
		Usage:  "Generate a sample recipe catalog with cover images",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the generator options file",
				Value:   "datagen.yaml",
				Sources: cli.EnvVars("DATAGEN_CONFIG_FILE"),
			},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
			&cli.StringSliceFlag{Name: "cuisine", Usage: "Cuisine to generate, repeatable"},
			&cli.IntFlag{Name: "recipes-per-cuisine", Usage: "Recipes requested per cuisine"},
			&cli.BoolFlag{Name: "skip-images", Usage: "Do not generate cover images"},
			&cli.StringFlag{Name: "s3-bucket", Usage: "Mirror generated images to this bucket"},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "OpenAI API key",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "OpenAI compatible API base URL",
				Sources: cli.EnvVars("OPENAI_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("datagen failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logging.Init(logging.Config{Level: cmd.String("log-level"), Format: "console"})

	opts, err := datagen.LoadOptions(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("output") {
		opts.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("cuisine") {
		opts.Cuisines = cmd.StringSlice("cuisine")
	}
	if cmd.IsSet("recipes-per-cuisine") {
		opts.RecipesPerCuisine = int(cmd.Int("recipes-per-cuisine"))
	}
	if cmd.IsSet("skip-images") {
		opts.SkipImages = cmd.Bool("skip-images")
	}
	if cmd.IsSet("s3-bucket") {
		opts.S3Bucket = cmd.String("s3-bucket")
	}

	client, err := datagen.NewOpenAIClient(cmd.String("api-key"), cmd.String("endpoint"), opts)
	if err != nil {
		return err
	}

	var mirror datagen.Mirror
	if opts.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, opts.S3Bucket, opts.S3Prefix)
		if err != nil {
			return fmt.Errorf("failed to configure S3 mirror: %w", err)
		}
		mirror = s3cfg
	}

	catalog, err := datagen.NewWorker(client, opts, mirror).Run(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, c := range catalog.Cuisines {
		total += len(c.Recipes)
	}
	log.Info().Int("cuisines", len(catalog.Cuisines)).Int("recipes", total).Str("output", opts.OutputDir).Msg("catalog written")
	return nil
}
