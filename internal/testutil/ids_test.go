package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedIDGenerator_Sequence(t *testing.T) {
	gen := NewFixedIDGenerator("c")

	assert.Equal(t, "c-1", gen.NewID())
	assert.Equal(t, "c-2", gen.NewID())
	assert.Equal(t, 2, gen.Issued())
}

func TestFixedIDGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "node-1", NewFixedIDGenerator("").NewID())
}

func TestFixedIDGenerator_Reset(t *testing.T) {
	gen := NewFixedIDGenerator("g")
	gen.NewID()
	gen.NewID()

	gen.Reset()
	assert.Equal(t, 0, gen.Issued())
	assert.Equal(t, "g-1", gen.NewID())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator("x")
	const numGoroutines = 50
	const callsPerGoroutine = 40

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				id := gen.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, numGoroutines*callsPerGoroutine, "every id must be unique")
	assert.Equal(t, numGoroutines*callsPerGoroutine, gen.Issued())
}
