package demo

import (
	"context"
	"fmt"
	"time"

	ristretto "github.com/dgraph-io/ristretto/v2"
	"github.com/on-the-ground/siphon_go/shared/helper"
)

const usersKey = "users"

// CachedBackend serves repeated requests from a ristretto cache for ttl and
// retries failed backend calls.
type CachedBackend struct {
	next     Backend
	cache    *ristretto.Cache[string, []User]
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

// NewCachedBackend wraps next.
func NewCachedBackend(next Backend, ttl time.Duration, attempts int, backoff time.Duration) (*CachedBackend, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []User]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create users cache: %w", err)
	}
	return &CachedBackend{next: next, cache: cache, ttl: ttl, attempts: attempts, backoff: backoff}, nil
}

// GetUsers returns the cached list if still fresh, else asks the backend.
func (c *CachedBackend) GetUsers(ctx context.Context) ([]User, error) {
	if users, ok := c.cache.Get(usersKey); ok {
		return users, nil
	}

	var users []User
	err := helper.Retry(c.attempts, c.backoff, func() error {
		var err error
		users, err = c.next.GetUsers(ctx)
		if ctx.Err() != nil {
			// not worth another attempt
			return nil
		}
		return err
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	c.cache.SetWithTTL(usersKey, users, int64(len(users)), c.ttl)
	c.cache.Wait()
	return users, nil
}

// Invalidate drops the cached list.
func (c *CachedBackend) Invalidate() {
	c.cache.Del(usersKey)
}

// Close releases the cache goroutines.
func (c *CachedBackend) Close() {
	c.cache.Close()
}
