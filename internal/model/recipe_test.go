package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func validRecipe() *Recipe {
	return &Recipe{
		ID:          42,
		OwnerID:     uuid.New(),
		CuisineID:   1,
		Name:        "Pad Thai",
		Ingredients: datatypes.JSONSlice[string]{"rice noodles", "tamarind"},
		Instructions: MarkdownData{
			Markdown: "Soak the noodles.",
			HTML:     "<p>Soak the noodles.</p>\n",
		},
	}
}

func TestRecipeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Recipe)
		wantErr bool
	}{
		{"valid", func(r *Recipe) {}, false},
		{"zero id", func(r *Recipe) { r.ID = 0 }, true},
		{"nil owner", func(r *Recipe) { r.OwnerID = uuid.Nil }, true},
		{"empty name", func(r *Recipe) { r.Name = "" }, true},
		{"zero cuisine", func(r *Recipe) { r.CuisineID = 0 }, true},
		{"no ingredients", func(r *Recipe) { r.Ingredients = nil }, true},
		{"blank ingredient", func(r *Recipe) { r.Ingredients = datatypes.JSONSlice[string]{"salt", ""} }, true},
		{"missing html", func(r *Recipe) { r.Instructions.HTML = "" }, true},
		{"missing markdown", func(r *Recipe) { r.Instructions.Markdown = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageDataIsZero(t *testing.T) {
	assert.True(t, ImageData{}.IsZero())
	assert.False(t, ImageData{URL: "thai/pad-thai.jpg"}.IsZero())
}
