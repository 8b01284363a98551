package marktplaats

import (
	"context"
	"sync"
	"time"

	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

// cacheEntry holds one query's ads with an expiration.
type cacheEntry struct {
	expiration time.Time
	ads        []model.Ad
}

// CachedSource wraps an ad source with a thread-safe in-process TTL cache
// keyed by query. With many active search requests sharing the default
// query, consecutive ticks would otherwise hit the source once per request.
type CachedSource struct {
	source  service.AdSource
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewCachedSource wraps source with a query cache of the given TTL.
func NewCachedSource(source service.AdSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source:  source,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Search returns cached ads when fresh, otherwise delegates to the wrapped
// source. Failed lookups are not cached.
func (c *CachedSource) Search(ctx context.Context, query string) ([]model.Ad, error) {
	if ads, ok := c.get(query); ok {
		return ads, nil
	}

	ads, err := c.source.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.set(query, ads)
	return ads, nil
}

func (c *CachedSource) get(query string) ([]model.Ad, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[query]
	if !ok || time.Now().After(entry.expiration) {
		return nil, false
	}
	return entry.ads, true
}

func (c *CachedSource) set(query string, ads []model.Ad) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistically drop whatever has expired
	now := time.Now()
	for k, entry := range c.entries {
		if now.After(entry.expiration) {
			delete(c.entries, k)
		}
	}

	c.entries[query] = cacheEntry{
		ads:        ads,
		expiration: now.Add(c.ttl),
	}
}
