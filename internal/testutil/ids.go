package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined participant IDs for testing.
//
// This enables deterministic assignment tests: participant i always gets the
// same ID, so stored assignments can be compared exactly.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedIDGenerator("p-1", "p-2")
//	gen.Generate() // "p-1"
//	gen.Generate() // "p-2"
//	gen.Generate() // panic: all IDs exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
// Panics if all IDs have been consumed, to catch test misconfiguration.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all IDs exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SequentialIDGenerator returns "participant-1", "participant-2", ... forever.
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  int
}

// Generate returns the next sequential ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("participant-%d", g.n)
}
