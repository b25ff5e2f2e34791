package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
)

var (
	_ ports.Cache = (*MemoryCache)(nil)
	_ ports.Cache = Nop{}
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache caché local para una sola instancia.
type MemoryCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]memoryEntry
	versions map[string]int64
	now      func() time.Time
}

// NewMemoryCache ttl <= 0 = sin expiración.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:      ttl,
		entries:  make(map[string]memoryEntry),
		versions: make(map[string]int64),
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) TagVersion(_ context.Context, tag string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[tag], nil
}

func (c *MemoryCache) Invalidate(_ context.Context, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		c.versions[tag]++
	}
	return nil
}

// Nop caché desactivada: nunca hay acierto.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) TagVersion(context.Context, string) (int64, error) { return 0, nil }
func (Nop) Invalidate(context.Context, ...string) error       { return nil }
