// Package cache provides the TTL stores that memoize upstream fetch results.
// Each fetcher owns one namespace; an expired entry is refetched synchronously
// by the requesting call (no stale-while-revalidate).
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a byte-level TTL cache. Implementations must be safe for
// concurrent use. Get reports a miss for absent and expired entries alike.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// memoryEntry pairs a cached value with its expiry instant.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the in-process fallback used when Redis is not configured.
// State lives for the lifetime of the process only.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory TTL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

// Get returns the cached bytes for key if the entry has not expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key until ttl elapses. Expired entries are evicted
// lazily here rather than by a background sweeper.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
}

// Key builds a namespaced cache key, escaping characters that are
// problematic for Redis keys.
func Key(namespace string, parts ...string) string {
	b := strings.Builder{}
	b.WriteString(safe(namespace))
	for _, p := range parts {
		b.WriteString(":")
		b.WriteString(safe(p))
	}
	return b.String()
}

// safe escapes separator characters inside a single key segment.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
