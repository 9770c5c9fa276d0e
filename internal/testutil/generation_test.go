package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator_Increments(t *testing.T) {
	gen := NewSequenceGenerator("load")

	assert.Equal(t, "load-1", gen.Generate())
	assert.Equal(t, "load-2", gen.Generate())
	assert.Equal(t, "load-3", gen.Generate())
}

func TestSequenceGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "gen-1", NewSequenceGenerator("").Generate())
}

func TestSequenceGenerator_Reset(t *testing.T) {
	gen := NewSequenceGenerator("")
	gen.Generate()
	gen.Generate()

	gen.Reset()

	assert.Equal(t, "gen-1", gen.Generate())
}

func TestSequenceGenerator_ConcurrentTokensAreUnique(t *testing.T) {
	gen := NewSequenceGenerator("")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok := gen.Generate()
				mu.Lock()
				seen[tok] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
