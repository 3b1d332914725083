package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator produces predictable node ids for tests.
//
// Ids are "<prefix>-1", "<prefix>-2", ... so the same construction sequence
// always yields the same tree, which keeps golden snapshots byte-identical.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewFixedIDGenerator creates a generator. An empty prefix becomes "node".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "node"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// NewID returns the next id in sequence.
func (g *FixedIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Issued returns how many ids have been handed out.
func (g *FixedIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next NewID returns "<prefix>-1".
func (g *FixedIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
