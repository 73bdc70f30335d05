package session

import (
	"bytes"
	"context"
	"sync"

	"newsdesk/internal/domain"
)

// MemoryCache keeps user data in process memory.
type MemoryCache struct {
	key string

	mu      sync.RWMutex
	data    domain.UserData
	changes chan domain.CacheChange
	closed  bool
}

func NewMemoryCache(key string) *MemoryCache {
	return &MemoryCache{
		key:     key,
		changes: make(chan domain.CacheChange, 16),
	}
}

func (c *MemoryCache) Get(_ context.Context) (domain.UserData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if domain.IsEmptyUserData(c.data) {
		return nil, nil
	}
	return bytes.Clone(c.data), nil
}

func (c *MemoryCache) Set(_ context.Context, data domain.UserData) error {
	c.mu.Lock()
	c.data = bytes.Clone(data)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Changes() <-chan domain.CacheChange {
	return c.changes
}

// SimulateExternal applies a change as if another writer made it and
// notifies the watcher. A nil value clears the entry.
func (c *MemoryCache) SimulateExternal(data domain.UserData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.data = bytes.Clone(data)
	select {
	case c.changes <- domain.CacheChange{Key: c.key, Value: bytes.Clone(data)}:
	default:
	}
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.changes)
	}
	return nil
}
