package embedding_test

import (
	"context"
	"testing"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/embedding"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

func TestLinearScan_FilterAndOrder(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "")
	cuisine := testhelpers.CreateCuisine(t, db, "Thai")

	withVector := func(id int64, v []float32) {
		r := testhelpers.NewRecipe(id, owner.ID, cuisine.ID, "recipe")
		vec := pgvector.NewVector(v)
		r.Embedding = &vec
		testhelpers.InsertRecipe(t, db, r)
	}

	withVector(1, []float32{1, 0})    // distance 0
	withVector(2, []float32{1, 1})    // ~0.293
	withVector(3, []float32{0, 1})    // 1
	withVector(4, []float32{-1, 0})   // 2
	withVector(5, []float32{1, 0, 0}) // wrong dimension, skipped
	testhelpers.InsertRecipe(t, db, testhelpers.NewRecipe(6, owner.ID, cuisine.ID, "no vector"))

	scan := embedding.NewLinearScan(db)
	query := []float32{1, 0}

	matches, err := scan.Search(context.Background(), query, embedding.DistanceFilter{
		Threshold: embedding.DefaultThreshold, Direction: embedding.AtLeast,
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, []int64{2, 3, 4}, ids(matches))
	assert.InDelta(t, 0.2929, matches[0].Distance, 1e-3)

	matches, err = scan.Search(context.Background(), query, embedding.DistanceFilter{
		Threshold: embedding.DefaultThreshold, Direction: embedding.AtMost,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(matches))
}

func TestLinearScan_TiesPreferNewest(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	owner := testhelpers.CreateUser(t, db, "")
	cuisine := testhelpers.CreateCuisine(t, db, "Thai")

	for _, id := range []int64{10, 30, 20} {
		r := testhelpers.NewRecipe(id, owner.ID, cuisine.ID, "same")
		vec := pgvector.NewVector([]float32{0, 1})
		r.Embedding = &vec
		testhelpers.InsertRecipe(t, db, r)
	}

	matches, err := embedding.NewLinearScan(db).Search(context.Background(), []float32{1, 0},
		embedding.DistanceFilter{Threshold: 0.25, Direction: embedding.AtLeast})
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20, 10}, ids(matches))
}

func TestPgvectorSearch(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	owner := testhelpers.CreateUser(t, db, "")
	cuisine := testhelpers.CreateCuisine(t, db, "Thai")

	for id, v := range map[int64][]float32{1: {1, 0}, 2: {1, 1}, 3: {0, 1}} {
		r := testhelpers.NewRecipe(id, owner.ID, cuisine.ID, "r")
		vec := pgvector.NewVector(v)
		r.Embedding = &vec
		testhelpers.InsertRecipe(t, db, r)
	}

	matches, err := embedding.NewPgvectorSearch(db).Search(context.Background(), []float32{1, 0},
		embedding.DistanceFilter{Threshold: 0.25, Direction: embedding.AtLeast})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(matches))
}

func ids(matches []embedding.Match) []int64 {
	out := make([]int64, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.ID)
	}
	return out
}
