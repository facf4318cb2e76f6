// Package llm provides the concurrent LLM-call layer the Bug Generators
// (lm-modify, lm-rewrite) and the Issue Generator need: a rotated API-key
// pool, per-key rate limiting, and a thin chat-completion client with
// retries.
package llm

import (
	"fmt"
	"sync"
)

// KeyPool rotates a user-supplied set of API keys round-robin across
// callers, per spec §5's "LLM API tokens are rotated across workers from a
// user-supplied pool."
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyPool returns a KeyPool over keys. Returns an error if keys is
// empty, since a pool with nothing to rotate is a configuration mistake.
func NewKeyPool(keys []string) (*KeyPool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("llm: key pool requires at least one API key")
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	return &KeyPool{keys: cp}, nil
}

// Next returns the next key in rotation.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return k
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
