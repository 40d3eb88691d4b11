package types

// CatalogFile is the on-disk format written by the data generator and read
// by the seeder.
type CatalogFile struct {
	Cuisines []CatalogCuisine `json:"cuisines"`
}

type CatalogCuisine struct {
	Name    string          `json:"name"`
	Recipes []CatalogRecipe `json:"recipes"`
}

type CatalogRecipe struct {
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Ingredients          []string      `json:"ingredients"`
	InstructionsMarkdown string        `json:"instructionsMarkdown"`
	CoverImagePrompt     string        `json:"coverImagePrompt,omitempty"`
	CoverImage           *ImageDataDto `json:"coverImage,omitempty"`
}
