// Package datagen synthesizes a sample recipe catalog with a chat model and
// an image model, and writes it in the format read by the seeder.
package datagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// CatalogFileName is the file written to the output directory.
const CatalogFileName = "data.json"

// ImagesDirName is the subdirectory holding cover images. It is the images
// root the API serves cover images from.
const ImagesDirName = "images"

// Mirror receives a copy of every stored cover image.
type Mirror interface {
	PutObject(ctx context.Context, name, contentType string, data []byte) error
}

type recipeList struct {
	Cuisines []struct {
		Name    string   `json:"name"`
		Recipes []string `json:"recipes"`
	} `json:"cuisines"`
}

type recipeData struct {
	Description          string   `json:"description"`
	Ingredients          []string `json:"ingredients"`
	InstructionsMarkdown string   `json:"instructionsMarkdown"`
	CoverImagePrompt     string   `json:"coverImagePrompt"`
}

var (
	recipeListExample = `{"cuisines":[{"name":"string","recipes":["string"]}]}`
	recipeDataExample = `{"description":"string","ingredients":["string"],"instructionsMarkdown":"string",` +
		`"coverImagePrompt":"descriptive prompt for generating an image of the plated finished recipe"}`
)

// Worker runs the generation pipeline.
type Worker struct {
	gen    Generator
	opts   Options
	mirror Mirror
}

// NewWorker builds a worker. mirror may be nil.
func NewWorker(gen Generator, opts Options, mirror Mirror) *Worker {
	return &Worker{gen: gen, opts: opts, mirror: mirror}
}

// Run generates the catalog, writes it and its images under the output
// directory, and returns it. Recipes and images that fail to generate are
// logged and skipped.
func (w *Worker) Run(ctx context.Context) (*types.CatalogFile, error) {
	if err := w.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(w.opts.OutputDir, ImagesDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	start := time.Now()
	catalog, err := w.generateRecipes(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.writeCatalog(catalog); err != nil {
		return nil, err
	}
	log.Info().Str("component", "datagen").
		Int("recipes", countRecipes(catalog)).
		Dur("elapsed", time.Since(start)).
		Msg("recipe generation finished")

	if w.opts.SkipImages {
		return catalog, nil
	}

	start = time.Now()
	if err := w.generateImages(ctx, catalog); err != nil {
		return nil, err
	}
	if err := w.writeCatalog(catalog); err != nil {
		return nil, err
	}
	log.Info().Str("component", "datagen").Dur("elapsed", time.Since(start)).Msg("image generation finished")
	return catalog, nil
}

func (w *Worker) generateRecipes(ctx context.Context) (*types.CatalogFile, error) {
	var list recipeList
	err := w.gen.ChatJSON(ctx,
		"You are a helpful assistant that creates recipe lists. Respond with JSON shaped like "+recipeListExample,
		fmt.Sprintf("Create a list of homemade recipes popular in the United States with %d recipes each from the following cuisines: %s",
			w.opts.RecipesPerCuisine, strings.Join(w.opts.Cuisines, ", ")),
		&list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipe list: %w", err)
	}

	// Results land in fixed slots so the output order follows the list.
	slots := make([][]*types.CatalogRecipe, len(list.Cuisines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.RecipeGenerationMaxConcurrency)

	for ci, cuisine := range list.Cuisines {
		slots[ci] = make([]*types.CatalogRecipe, len(cuisine.Recipes))
		for ri, name := range cuisine.Recipes {
			ci, ri, name := ci, ri, name
			g.Go(func() error {
				recipe, err := w.generateRecipe(gctx, name)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					metrics.GeneratorItemsTotal.WithLabelValues("recipe", "error").Inc()
					log.Warn().Str("component", "datagen").Err(err).Str("recipe", name).Msg("skipping recipe")
					return nil
				}
				metrics.GeneratorItemsTotal.WithLabelValues("recipe", "success").Inc()
				slots[ci][ri] = recipe
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := &types.CatalogFile{}
	for ci, cuisine := range list.Cuisines {
		out := types.CatalogCuisine{Name: strings.TrimSpace(cuisine.Name)}
		for _, r := range slots[ci] {
			if r != nil {
				out.Recipes = append(out.Recipes, *r)
			}
		}
		catalog.Cuisines = append(catalog.Cuisines, out)
	}
	return catalog, nil
}

func (w *Worker) generateRecipe(ctx context.Context, name string) (*types.CatalogRecipe, error) {
	var data recipeData
	err := w.gen.ChatJSON(ctx,
		"You are a helpful assistant that creates recipes. Respond with JSON shaped like "+recipeDataExample,
		fmt.Sprintf("Create a recipe for %s.", name),
		&data)
	if err != nil {
		return nil, err
	}
	if len(data.Ingredients) == 0 || strings.TrimSpace(data.InstructionsMarkdown) == "" {
		return nil, fmt.Errorf("incomplete recipe for %s", name)
	}
	return &types.CatalogRecipe{
		Name:                 strings.TrimSpace(name),
		Description:          data.Description,
		Ingredients:          data.Ingredients,
		InstructionsMarkdown: data.InstructionsMarkdown,
		CoverImagePrompt:     data.CoverImagePrompt,
	}, nil
}

func (w *Worker) generateImages(ctx context.Context, catalog *types.CatalogFile) error {
	names := newSlugger()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.ImageGenerationMaxConcurrency)

	for ci := range catalog.Cuisines {
		cuisine := &catalog.Cuisines[ci]
		for ri := range cuisine.Recipes {
			recipe := &cuisine.Recipes[ri]
			if recipe.CoverImagePrompt == "" {
				continue
			}
			fileName := names.next(cuisine.Name+" "+recipe.Name) + ".jpg"

			g.Go(func() error {
				if err := w.generateImage(gctx, recipe, fileName); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					metrics.GeneratorItemsTotal.WithLabelValues("image", "error").Inc()
					log.Warn().Str("component", "datagen").Err(err).Str("recipe", recipe.Name).Msg("skipping cover image")
					return nil
				}
				metrics.GeneratorItemsTotal.WithLabelValues("image", "success").Inc()
				return nil
			})
		}
	}
	return g.Wait()
}

func (w *Worker) generateImage(ctx context.Context, recipe *types.CatalogRecipe, fileName string) error {
	raw, err := w.gen.GenerateImage(ctx, recipe.CoverImagePrompt)
	if err != nil {
		return err
	}
	data, err := reencodeJPEG(raw, w.opts.ImageQuality)
	if err != nil {
		return err
	}

	path := filepath.Join(w.opts.OutputDir, ImagesDirName, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if w.mirror != nil {
		if err := w.mirror.PutObject(ctx, fileName, "image/jpeg", data); err != nil {
			log.Warn().Str("component", "datagen").Err(err).Str("file", fileName).Msg("failed to mirror image")
		}
	}

	alt := recipe.Name
	recipe.CoverImage = &types.ImageDataDto{URL: fileName, AltText: &alt}
	return nil
}

// reencodeJPEG decodes a PNG or JPEG image and encodes it as JPEG at quality.
func reencodeJPEG(raw []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: min(max(quality, 1), 100)}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Worker) writeCatalog(catalog *types.CatalogFile) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	path := filepath.Join(w.opts.OutputDir, CatalogFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func countRecipes(catalog *types.CatalogFile) int {
	n := 0
	for _, c := range catalog.Cuisines {
		n += len(c.Recipes)
	}
	return n
}

// slugger hands out unique file-name-safe slugs.
type slugger struct {
	mu   sync.Mutex
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: map[string]int{}}
}

func (s *slugger) next(text string) string {
	base := slugify(text)
	if base == "" {
		base = "recipe"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[base]++
	if n := s.seen[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

func slugify(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
