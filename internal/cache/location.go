package cache

import (
	"context"
	"sync"
)

// LocationCache remembers which partition a recipe id was last seen in.
// Entries are hints: readers must verify them against the partition.
type LocationCache interface {
	// GetLocation returns the partition hinted for id, or "" when there is none.
	GetLocation(ctx context.Context, id string) (string, error)
	// SetLocation records the partition of id.
	SetLocation(ctx context.Context, id, partition string) error
	// DeleteLocation forgets id.
	DeleteLocation(ctx context.Context, id string) error
}

var _ LocationCache = (*MemoryLocationCache)(nil)

// MemoryLocationCache is a process-local LocationCache.
type MemoryLocationCache struct {
	mu        sync.RWMutex
	locations map[string]string
}

func NewMemoryLocationCache() *MemoryLocationCache {
	return &MemoryLocationCache{locations: make(map[string]string)}
}

func (m *MemoryLocationCache) GetLocation(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locations[id], nil
}

func (m *MemoryLocationCache) SetLocation(_ context.Context, id, partition string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[id] = partition
	return nil
}

func (m *MemoryLocationCache) DeleteLocation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, id)
	return nil
}
