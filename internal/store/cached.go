package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	readCacheEntries = 32
	readCacheTTL     = 5 * time.Minute
)

type cachedBlob struct {
	blob     Blob
	cachedAt time.Time
}

// CachedStore fronts a BlobStore with a small in-memory LRU so repeated
// reads of the same file (page renders, re-opens from the recent list) skip
// the backend. Writes and deletes invalidate their key.
type CachedStore struct {
	next  BlobStore
	cache *lru.Cache[string, cachedBlob]
	ttl   time.Duration
}

func NewCachedStore(next BlobStore) (*CachedStore, error) {
	cache, err := lru.New[string, cachedBlob](readCacheEntries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{
		next:  next,
		cache: cache,
		ttl:   readCacheTTL,
	}, nil
}

func (c *CachedStore) Put(ctx context.Context, name string, blob Blob) error {
	if err := c.next.Put(ctx, name, blob); err != nil {
		return err
	}
	c.cache.Remove(name)
	return nil
}

func (c *CachedStore) Get(ctx context.Context, name string) (Blob, error) {
	if cached, ok := c.cache.Get(name); ok {
		if time.Since(cached.cachedAt) < c.ttl {
			return cached.blob, nil
		}
		c.cache.Remove(name)
	}
	blob, err := c.next.Get(ctx, name)
	if err != nil {
		return Blob{}, err
	}
	c.cache.Add(name, cachedBlob{blob: blob, cachedAt: time.Now()})
	return blob, nil
}

func (c *CachedStore) Delete(ctx context.Context, name string) error {
	c.cache.Remove(name)
	return c.next.Delete(ctx, name)
}
