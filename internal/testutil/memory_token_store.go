package testutil

import (
	"context"
	"path"
	"sync"
	"time"

	"todo-me/internal/domain"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryTokenStore implements services.TokenStore in memory. GetDel
// holds the write lock across the read and the delete, so concurrent
// consumers of the same key see exactly one hit, matching the Redis
// GETDEL guarantee.
type MemoryTokenStore struct {
	entries map[string]memoryEntry
	mu      sync.Mutex

	// Now lets tests control the clock. Defaults to time.Now.
	Now func() time.Time
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		entries: make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

// SetWithTTL stores value under key, expiring after ttl.
func (m *MemoryTokenStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.Now().Add(ttl),
	}
	return nil
}

// Get retrieves the value under key without removing it.
func (m *MemoryTokenStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists || entry.expired(m.Now()) {
		delete(m.entries, key)
		return nil, domain.NewNotFoundError("TOKEN_NOT_FOUND", "Token not found")
	}
	return append([]byte(nil), entry.value...), nil
}

// GetDel atomically retrieves and removes the value under key.
func (m *MemoryTokenStore) GetDel(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists || entry.expired(m.Now()) {
		delete(m.entries, key)
		return nil, domain.NewNotFoundError("TOKEN_NOT_FOUND", "Token not found")
	}
	delete(m.entries, key)
	return append([]byte(nil), entry.value...), nil
}

// Delete removes the value under key.
func (m *MemoryTokenStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// DeleteByPattern removes all keys matching a glob pattern.
func (m *MemoryTokenStore) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if matched, _ := path.Match(pattern, key); matched {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many live entries the store holds.
func (m *MemoryTokenStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	now := m.Now()
	for _, entry := range m.entries {
		if !entry.expired(now) {
			count++
		}
	}
	return count
}
