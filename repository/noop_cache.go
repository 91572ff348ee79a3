package repository

import "context"

// NoopCache never stores anything. Used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() NoopCache {
	return NoopCache{}
}

func (NoopCache) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (NoopCache) Set(context.Context, string, string) error {
	return nil
}
