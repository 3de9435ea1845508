package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache is the in-process fallback used when no Redis URL is configured
// (single-node and reduced-dependency deployments).
type LocalCache struct {
	c *gocache.Cache
}

func NewLocalCache() *LocalCache {
	// purge expired items every 10 minutes
	return &LocalCache{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (l *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := l.c.Get(key); found {
		return x.([]byte), true, nil
	}
	return nil, false, nil
}

func (l *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.c.Set(key, value, ttl)
	return nil
}

func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.c.Delete(key)
	return nil
}
