package testhelpers

import (
	"testing"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

func TestSQLiteRoundTrip(t *testing.T) {
	db := NewSQLiteDB(t)

	user := CreateUser(t, db, model.RoleAdministrator)
	cuisine := CreateCuisine(t, db, "Korean")

	r := NewRecipe(99, user.ID, cuisine.ID, "Bibimbap")
	vec := pgvector.NewVector([]float32{0.5, 0.25})
	r.Embedding = &vec
	r.Description = StrPtr("Mixed rice")
	InsertRecipe(t, db, r)

	var loaded model.Recipe
	require.NoError(t, db.Preload("Cuisine").First(&loaded, 99).Error)

	assert.Equal(t, user.ID, loaded.OwnerID)
	assert.Equal(t, "Korean", loaded.Cuisine.Name)
	assert.Equal(t, []string{"salt", "water"}, []string(loaded.Ingredients))
	assert.Equal(t, "<p>Mix.</p>\n", loaded.Instructions.HTML)
	require.NotNil(t, loaded.Embedding)
	assert.Equal(t, []float32{0.5, 0.25}, loaded.Embedding.Slice())
	require.NotNil(t, loaded.Description)
	assert.Equal(t, "Mixed rice", *loaded.Description)
	assert.True(t, loaded.CoverImage.IsZero())
}

func TestSQLiteDatabasesAreIsolated(t *testing.T) {
	a := NewSQLiteDB(t)
	b := NewSQLiteDB(t)

	CreateCuisine(t, a, "Italian")

	var count int64
	require.NoError(t, b.Model(&model.Cuisine{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeBeforeSaveRejectsInvalid(t *testing.T) {
	db := NewSQLiteDB(t)
	user := CreateUser(t, db, "")
	cuisine := CreateCuisine(t, db, "French")

	r := NewRecipe(1, user.ID, cuisine.ID, "")
	assert.Error(t, db.Create(r).Error)
}
