package embedding

import (
	"context"
	"fmt"
	"sort"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// Match is a recipe id with its cosine distance to the query.
type Match struct {
	ID       int64
	Distance float64
}

// NearestNeighbors returns every recipe passing filter, ordered by ascending
// distance. Ties keep the newest recipe first.
type NearestNeighbors interface {
	Search(ctx context.Context, query []float32, filter DistanceFilter) ([]Match, error)
}

// LinearScan loads every stored embedding and compares it in process.
// Recipes without an embedding, or with one of a different dimension, are skipped.
type LinearScan struct {
	db *gorm.DB
}

func NewLinearScan(db *gorm.DB) *LinearScan {
	return &LinearScan{db: db}
}

func (s *LinearScan) Search(ctx context.Context, query []float32, filter DistanceFilter) ([]Match, error) {
	rows, err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("id", "embedding").
		Where("embedding IS NOT NULL").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to scan embeddings: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			id  int64
			vec pgvector.Vector
		)
		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("failed to read embedding: %w", err)
		}
		distance := CosineDistance(query, vec.Slice())
		if filter.Keep(distance) {
			matches = append(matches, Match{ID: id, Distance: distance})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	sortMatches(matches)
	return matches, nil
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID > matches[j].ID
	})
}

// PgvectorSearch pushes the distance computation into postgres using the
// pgvector cosine distance operator.
type PgvectorSearch struct {
	db *gorm.DB
}

func NewPgvectorSearch(db *gorm.DB) *PgvectorSearch {
	return &PgvectorSearch{db: db}
}

func (s *PgvectorSearch) Search(ctx context.Context, query []float32, filter DistanceFilter) ([]Match, error) {
	vec := pgvector.NewVector(query)

	op := ">="
	if filter.Direction == AtMost {
		op = "<="
	}

	var matches []Match
	err := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("id, embedding <=> ? AS distance", vec).
		Where("embedding IS NOT NULL").
		Where("vector_dims(embedding) = ?", len(query)).
		Where("(embedding <=> ?) "+op+" ?", vec, filter.Threshold).
		Order("distance ASC").
		Order("id DESC").
		Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest neighbors: %w", err)
	}
	return matches, nil
}
