package repository

import "context"

// CacheRepository stores serialized predictions by key. A miss is
// ("", false, nil); a backend failure is reported as an error so callers
// can log it and carry on without the cache.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}
