package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns generation tokens "<prefix>-1", "<prefix>-2", ...
//
// Tokens are distinct per call, so stale-generation detection behaves as it
// does with UUIDv7 tokens, but runs are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceGenerator creates a generator. An empty prefix uses "gen".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "gen"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next token.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
