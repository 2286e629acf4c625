package cache

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process cache backend. Expired entries are dropped
// lazily on Get and swept periodically by a janitor.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	janitor *cron.Cron
}

// NewMemory creates a memory cache with a janitor sweeping expired
// entries once a minute.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	m.janitor = cron.New()
	m.janitor.AddFunc("@every 1m", m.sweep)
	m.janitor.Start()
	return m
}

// NewMemoryWithClock creates a memory cache without a janitor, reading
// time from now. Expiry is enforced lazily on Get, so a substituted
// clock fully controls entry lifetimes.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the cached value or ErrMiss.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrMiss
	}
	if !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", ErrMiss
	}
	return e.value, nil
}

// Set stores a value, overwriting any existing entry.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes an entry. Deleting a missing key is a no-op.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close stops the janitor, if one is running.
func (m *Memory) Close() error {
	if m.janitor != nil {
		m.janitor.Stop()
	}
	return nil
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}
