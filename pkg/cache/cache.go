package cache

import (
	"context"
	"time"
)

// Cache is the process-external key/value contract used for raw catalog data
// and retrieval memoization. TTLs are always passed explicitly by the caller;
// implementations never invent their own expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
