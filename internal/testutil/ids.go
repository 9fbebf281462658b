package testutil

import (
	"fmt"
	"sync"
)

// CounterGenerator hands out constraint identity tokens "c1", "c2", ...
//
// Unlike constraint.FixedGenerator it never runs out, and it can be reset so
// that the same scenario run twice yields identical tokens.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type CounterGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewCounterGenerator creates a generator starting at 0.
//
// The first call to Generate() returns prefix+"1". An empty prefix means "c".
func NewCounterGenerator(prefix string) *CounterGenerator {
	if prefix == "" {
		prefix = "c"
	}
	return &CounterGenerator{prefix: prefix}
}

// Generate increments the counter and returns the next token.
func (g *CounterGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%d", g.prefix, g.seq)
}

// Issued returns how many tokens have been generated since the last Reset.
func (g *CounterGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the counter. After Reset(), Generate() returns prefix+"1".
func (g *CounterGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
