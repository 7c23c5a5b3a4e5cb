package cache

import (
	"context"
	"sync"
	"time"

	"storefront/models"
)

type entry struct {
	cart      *models.Cart
	expiresAt time.Time
}

// Memory is a process-local TTL cache. Carts are cloned on the way in and out.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, items: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (*models.Cart, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.cart.Clone(), true
}

func (m *Memory) Set(_ context.Context, key string, cart *models.Cart) {
	if cart == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{cart: cart.Clone(), expiresAt: m.now().Add(m.ttl)}
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if underPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
}
