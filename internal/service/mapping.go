package service

import (
	"gorm.io/datatypes"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

func toCuisineDto(c *model.Cuisine) types.CuisineDto {
	return types.CuisineDto{ID: c.ID, Name: c.Name}
}

// toRecipeDto maps a recipe to its read model. Ingredients and instructions
// are only included when withDetails is set.
func toRecipeDto(r *model.Recipe, withDetails bool) types.RecipeWithCuisineDto {
	dto := types.RecipeWithCuisineDto{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Cuisine:     types.CuisineDto{ID: r.CuisineID},
		Name:        r.Name,
		Description: r.Description,
		Created:     r.Created,
		Modified:    r.Modified,
	}
	if r.Cuisine != nil {
		dto.Cuisine = toCuisineDto(r.Cuisine)
	}
	if !r.CoverImage.IsZero() {
		dto.CoverImage = &types.ImageDataDto{URL: r.CoverImage.URL, AltText: r.CoverImage.AltText}
	}
	if withDetails {
		dto.Ingredients = append([]string{}, r.Ingredients...)
		dto.Instructions = &types.MarkdownDataDto{
			Markdown: r.Instructions.Markdown,
			HTML:     r.Instructions.HTML,
		}
	}
	return dto
}

func toRecipeDtos(recipes []model.Recipe, withDetails bool) []types.RecipeWithCuisineDto {
	out := make([]types.RecipeWithCuisineDto, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeDto(&recipes[i], withDetails))
	}
	return out
}

// applyRecipeDto copies client-editable fields onto r. HTML is rendered by
// the caller.
func applyRecipeDto(r *model.Recipe, dto *types.CreateUpdateRecipeDto) {
	r.Name = dto.Name
	r.CuisineID = dto.CuisineID
	r.Description = dto.Description
	r.Ingredients = datatypes.JSONSlice[string](append([]string{}, dto.Ingredients...))
	r.Instructions.Markdown = dto.Instructions
}
