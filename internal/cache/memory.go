package cache

import (
	"context"
	"sync"
	"time"

	"truthbot/internal/models"
)

type entry struct {
	expires time.Time
	resp    models.FactCheckResponse
}

// Memory is an in-process cache with a fixed TTL.
type Memory struct {
	now     func() time.Time
	entries map[string]entry
	ttl     time.Duration
	mu      sync.Mutex
}

// Ensure Memory implements Cache.
var _ Cache = (*Memory)(nil)

// NewMemory creates a memory cache whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		now:     time.Now,
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns a copy of the cached response for key.
func (m *Memory) Get(_ context.Context, key string) (*models.FactCheckResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}

	if m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}

	resp := e.resp

	return &resp, true, nil
}

// Set stores a copy of resp under key.
func (m *Memory) Set(_ context.Context, key string, resp *models.FactCheckResponse) error {
	if resp == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{resp: *resp, expires: m.now().Add(m.ttl)}

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
