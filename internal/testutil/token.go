package testutil

import (
	"fmt"
	"sync"
)

// TokenSequence generates "tok-1", "tok-2", ... deterministically.
// Thread-safe: dispatch can happen from timer callbacks in wall-clock runs.
type TokenSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewTokenSequence creates a generator with the given prefix.
// An empty prefix defaults to "tok".
func NewTokenSequence(prefix string) *TokenSequence {
	if prefix == "" {
		prefix = "tok"
	}
	return &TokenSequence{prefix: prefix}
}

func (t *TokenSequence) Generate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	return fmt.Sprintf("%s-%d", t.prefix, t.n)
}
