package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsOutOfRangeGeneratorID(t *testing.T) {
	_, err := New(-1)
	assert.Error(t, err)

	_, err = New(MaxGeneratorID + 1)
	assert.Error(t, err)
}

func TestNext_IsIncreasing(t *testing.T) {
	gen, err := New(1)
	require.NoError(t, err)

	prev := gen.Next()
	for i := 0; i < 1000; i++ {
		next := gen.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNext_UniqueUnderConcurrency(t *testing.T) {
	gen, err := New(7)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	ids := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- gen.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestTimestamp_UsesCustomEpoch(t *testing.T) {
	gen, err := New(0)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	ts := Timestamp(gen.Next())
	assert.True(t, ts.After(before), "timestamp %v should be recent", ts)
	assert.True(t, ts.After(Epoch))
}
