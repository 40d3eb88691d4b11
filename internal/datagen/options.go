package datagen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// DefaultCuisines is the cuisine list used when none is configured.
var DefaultCuisines = []string{
	"American",
	"Japanese",
	"Mexican",
	"Italian",
	"Chinese",
	"Thai",
	"Indian",
	"Spanish",
	"French",
	"Korean",
	"German",
}

// Options controls a generator run. It is read from YAML and may be
// overridden by command line flags.
type Options struct {
	Cuisines                       []string `yaml:"cuisines"`
	RecipesPerCuisine              int      `yaml:"recipesPerCuisine"`
	RecipeGenerationMaxConcurrency int      `yaml:"recipeGenerationMaxConcurrency"`
	ImageGenerationMaxConcurrency  int      `yaml:"imageGenerationMaxConcurrency"`
	// ImageQuality is the JPEG quality of stored cover images, 0..100.
	ImageQuality int  `yaml:"imageQuality"`
	SkipImages   bool `yaml:"skipImages"`

	OutputDir string `yaml:"outputDir"`

	ChatModel         string  `yaml:"chatModel"`
	ImageModel        string  `yaml:"imageModel"`
	ImageSize         string  `yaml:"imageSize"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`

	// S3Bucket enables mirroring generated images to S3 when set.
	S3Bucket string `yaml:"s3Bucket"`
	S3Prefix string `yaml:"s3Prefix"`
}

// DefaultOptions returns the options used for keys missing from the file.
func DefaultOptions() Options {
	return Options{
		Cuisines:                       append([]string{}, DefaultCuisines...),
		RecipesPerCuisine:              5,
		RecipeGenerationMaxConcurrency: 4,
		ImageGenerationMaxConcurrency:  2,
		ImageQuality:                   75,
		OutputDir:                      "generated",
		ChatModel:                      "gpt-4o-mini",
		ImageModel:                     "dall-e-3",
		ImageSize:                      "1024x1024",
		RequestsPerSecond:              2,
	}
}

// LoadOptions reads path on top of DefaultOptions. A missing file yields
// the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("failed to read options %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option ranges.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Cuisines, validation.Required, validation.Each(validation.Required)),
		validation.Field(&o.RecipesPerCuisine, validation.Required, validation.Min(1)),
		validation.Field(&o.RecipeGenerationMaxConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&o.ImageGenerationMaxConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&o.ImageQuality, validation.Min(0), validation.Max(100)),
		validation.Field(&o.OutputDir, validation.Required),
		validation.Field(&o.ChatModel, validation.Required),
		validation.Field(&o.ImageModel, validation.When(!o.SkipImages, validation.Required)),
		validation.Field(&o.RequestsPerSecond, validation.Required, validation.Min(0.01)),
	)
}
