// Package cache provides the byte cache backing derived views such as the
// today aggregate. Entries are disposable; every backend tolerates losing
// them at any time.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the backend interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// entry holds a cached value and its expiration time.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-memory Cache with lazy expiration.
type Memory struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// Get retrieves a value. Performs lazy expiration: deletes the entry and
// returns a miss if it has expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &entry{data: value, expiresAt: time.Now().Add(ttl)}
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
}

// StartCleanup runs a background goroutine that periodically removes expired
// entries. It stops when the context is cancelled.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				now := time.Now()
				for k, v := range m.entries {
					if now.After(v.expiresAt) {
						delete(m.entries, k)
					}
				}
				m.mu.Unlock()
			}
		}
	}()
}
