package session

import (
	"fmt"
	"sync/atomic"
)

// Generator mints process-unique session IDs.
type Generator struct {
	counter uint64
}

// NewGenerator creates a session ID generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns the next session ID.
func (g *Generator) Next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("sess-%d", n)
}
