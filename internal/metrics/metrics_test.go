package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEmbedding(t *testing.T) {
	ObserveEmbedding(time.Now(), nil)
	ObserveEmbedding(time.Now(), errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(EmbeddingRequestDuration))
}

func TestRecipeSearchesTotal(t *testing.T) {
	RecipeSearchesTotal.WithLabelValues("fallback").Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(RecipeSearchesTotal.WithLabelValues("fallback")), 1.0)
}
