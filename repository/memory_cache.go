package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process cache with expiry.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	val, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := val.(string)
	return s, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.cache.SetDefault(key, value)
	return nil
}

// Len returns the number of unexpired entries.
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}
