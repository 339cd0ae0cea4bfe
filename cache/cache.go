package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the single keyed response cache every view reads through.
// Keys are request signatures (upstream path + encoded query, prefixed
// per user) so distinct queries never share a slot, and every mutation
// path calls Invalidate so a write is never followed by a stale read
// surviving past it.
type Cache struct {
	backend    backend
	defaultTTL time.Duration
}

type backend interface {
	get(ctx context.Context, key string) ([]byte, bool)
	set(ctx context.Context, key string, payload []byte, ttl time.Duration)
	delete(ctx context.Context, key string)
	deletePrefix(ctx context.Context, prefix string)
}

// New returns a redis-backed cache when redisURL is set, an in-memory
// one otherwise.
func New(redisURL string, defaultTTL time.Duration) *Cache {
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("[CACHE] invalid REDIS_URL, falling back to memory: %v", err)
		} else {
			log.Printf("[CACHE] using redis backend")
			return &Cache{backend: &redisBackend{client: redis.NewClient(opts)}, defaultTTL: defaultTTL}
		}
	}
	return &Cache{backend: newMemoryBackend(), defaultTTL: defaultTTL}
}

// NewMemory returns an in-memory cache with an injectable clock.
func NewMemory(defaultTTL time.Duration, now func() time.Time) *Cache {
	b := newMemoryBackend()
	if now != nil {
		b.now = now
	}
	return &Cache{backend: b, defaultTTL: defaultTTL}
}

// GetOrFetch returns the cached payload when a non-expired entry exists
// under key. Otherwise it runs fetch, stores the result and returns it.
// A fetch failure caches nothing and propagates; an expired entry is
// never served as a fallback. ttl <= 0 means the default TTL.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if payload, ok := c.backend.get(ctx, key); ok {
		return payload, nil
	}
	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.backend.set(ctx, key, payload, ttl)
	return payload, nil
}

// Invalidate drops a single entry. Expiry is whole-entry; there is no
// field-level refresh.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	c.backend.delete(ctx, key)
}

// InvalidatePrefix drops every entry under prefix. Mutations use this
// to clear all query variants of a list in one call.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	c.backend.deletePrefix(ctx, prefix)
}

// -------- memory backend --------

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *memoryBackend) get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	// An entry is served strictly while now - storedAt < ttl.
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

func (m *memoryBackend) set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: payload, expiresAt: m.now().Add(ttl)}
}

func (m *memoryBackend) delete(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *memoryBackend) deletePrefix(ctx context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

// -------- redis backend --------

type redisBackend struct {
	client *redis.Client
}

func (r *redisBackend) get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] redis get %s: %v", key, err)
		}
		return nil, false
	}
	return payload, true
}

func (r *redisBackend) set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Printf("[CACHE] redis set %s: %v", key, err)
	}
}

func (r *redisBackend) delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[CACHE] redis del %s: %v", key, err)
	}
}

func (r *redisBackend) deletePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			log.Printf("[CACHE] redis scan %s: %v", prefix, err)
			return
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				log.Printf("[CACHE] redis del: %v", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
