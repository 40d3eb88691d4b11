package datagen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		opts, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultOptions(), opts)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "datagen.yaml")
		content := "cuisines: [Thai, Korean]\nrecipesPerCuisine: 2\nimageQuality: 90\nskipImages: true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		opts, err := LoadOptions(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Thai", "Korean"}, opts.Cuisines)
		assert.Equal(t, 2, opts.RecipesPerCuisine)
		assert.Equal(t, 90, opts.ImageQuality)
		assert.True(t, opts.SkipImages)
		assert.Equal(t, "gpt-4o-mini", opts.ChatModel)
		assert.Equal(t, 4, opts.RecipeGenerationMaxConcurrency)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "datagen.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cuisines: [unclosed"), 0o644))
		_, err := LoadOptions(path)
		assert.Error(t, err)
	})
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"no cuisines", func(o *Options) { o.Cuisines = nil }, true},
		{"blank cuisine", func(o *Options) { o.Cuisines = []string{"Thai", ""} }, true},
		{"zero recipes", func(o *Options) { o.RecipesPerCuisine = 0 }, true},
		{"zero concurrency", func(o *Options) { o.ImageGenerationMaxConcurrency = 0 }, true},
		{"quality too high", func(o *Options) { o.ImageQuality = 101 }, true},
		{"quality zero", func(o *Options) { o.ImageQuality = 0 }, false},
		{"no image model", func(o *Options) { o.ImageModel = "" }, true},
		{"no image model when skipping", func(o *Options) { o.ImageModel = ""; o.SkipImages = true }, false},
		{"no rate", func(o *Options) { o.RequestsPerSecond = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
