package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CuisineDto is the public view of a cuisine.
type CuisineDto struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MarkdownDataDto carries instructions as written and as rendered HTML.
type MarkdownDataDto struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// ImageDataDto references a recipe image.
type ImageDataDto struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText,omitempty"`
}

// CreateUpdateRecipeDto is the client payload for creating or replacing a recipe.
type CreateUpdateRecipeDto struct {
	Name         string   `json:"name"`
	CuisineID    int      `json:"cuisineId"`
	Description  *string  `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// Validate checks the payload before it reaches the store.
func (d CreateUpdateRecipeDto) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&d.CuisineID, validation.Required),
		validation.Field(&d.Ingredients, validation.Required, validation.Each(validation.Required)),
		validation.Field(&d.Instructions, validation.Required),
	)
}

// RecipeWithCuisineDto is the read model returned by the recipe endpoints.
// Ingredients and Instructions are only populated when details are requested.
type RecipeWithCuisineDto struct {
	ID           int64            `json:"id"`
	OwnerID      uuid.UUID        `json:"ownerId"`
	Cuisine      CuisineDto       `json:"cuisine"`
	Name         string           `json:"name"`
	Description  *string          `json:"description,omitempty"`
	CoverImage   *ImageDataDto    `json:"coverImage,omitempty"`
	Ingredients  []string         `json:"ingredients,omitempty"`
	Instructions *MarkdownDataDto `json:"instructions,omitempty"`
	Created      time.Time        `json:"created"`
	Modified     *time.Time       `json:"modified,omitempty"`
}

// PagedResult is one page of items plus the total count before paging.
type PagedResult[T any] struct {
	Count int64 `json:"count"`
	Items []T   `json:"items"`
}
