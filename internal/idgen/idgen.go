// Package idgen issues time-ordered 64-bit recipe identifiers.
package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Epoch is the custom snowflake epoch, 2024-01-01T00:00:00Z.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// MaxGeneratorID is the largest node number a 10-bit node field allows.
const MaxGeneratorID = 1023

var epochOnce sync.Once

// Generator hands out unique, increasing identifiers for one generator id.
type Generator struct {
	node *snowflake.Node
}

// New creates a Generator for the given generator id (0..1023).
func New(generatorID int64) (*Generator, error) {
	if generatorID < 0 || generatorID > MaxGeneratorID {
		return nil, fmt.Errorf("generator id %d out of range [0, %d]", generatorID, MaxGeneratorID)
	}

	// snowflake keeps the epoch in a package variable; set it once before any node exists.
	epochOnce.Do(func() {
		snowflake.Epoch = Epoch.UnixMilli()
	})

	node, err := snowflake.NewNode(generatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns the next identifier. Safe for concurrent use.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// Timestamp extracts the wall-clock time encoded in an identifier.
func Timestamp(id int64) time.Time {
	ms := snowflake.ParseInt64(id).Time()
	return time.UnixMilli(ms).UTC()
}
