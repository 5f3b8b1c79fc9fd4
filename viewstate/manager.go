package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rafaelcosta/filantropia-api/utils/cache"
)

// Manager hands out one Store per user, lazily created and shared
// across requests.
type Manager struct {
	mu        sync.Mutex
	stores    map[uint]*Store
	persister Persister
}

// NewManager creates a manager. persister may be nil for memory-only state.
func NewManager(persister Persister) *Manager {
	return &Manager{
		stores:    make(map[uint]*Store),
		persister: persister,
	}
}

// ForUser returns the user's store, creating it on first use.
func (m *Manager) ForUser(userID uint) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s
	}
	s := NewStore(userID, m.persister)
	m.stores[userID] = s
	return s
}

// Close tears down every store.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.stores {
		s.Close()
		delete(m.stores, id)
	}
}

// RedisPersister stores the durable view-state subset in Redis.
type RedisPersister struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewRedisPersister creates a persister over the shared Redis cache.
func NewRedisPersister(c *cache.RedisCache) *RedisPersister {
	return &RedisPersister{cache: c, ttl: 30 * 24 * time.Hour}
}

func prefsKey(userID uint) string {
	return fmt.Sprintf("ui:prefs:%d", userID)
}

// Load fetches the persisted subset; a missing key yields (nil, nil).
func (p *RedisPersister) Load(userID uint) (*Persisted, error) {
	var state Persisted
	err := p.cache.GetJSON(context.Background(), prefsKey(userID), &state)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Save writes the persisted subset.
func (p *RedisPersister) Save(userID uint, state Persisted) error {
	return p.cache.SetJSON(context.Background(), prefsKey(userID), state, p.ttl)
}
