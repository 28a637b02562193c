package cache

import (
	"context"
	"encoding/json"
	"time"

	"dispatch-svc/services/dispatch-svc/internal/engine"
)

// DispatchCache memoizes engine.Solve responses keyed by a canonical hash
// of the request. This is request/response memoization, not persistence of
// past assignments: entries expire on a TTL and are never consulted to
// influence a future solve's semantics.
type DispatchCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewDispatchCache creates a cache for engine.Response values.
func NewDispatchCache(cache Cache, defaultTTL time.Duration) *DispatchCache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	return &DispatchCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get returns the cached Response for req, if present.
func (d *DispatchCache) Get(ctx context.Context, req *engine.Request) (*engine.Response, bool, error) {
	key := BuildResponseKey(RequestHash(req))

	data, err := d.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var resp engine.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		_ = d.cache.Delete(ctx, key) //nolint:errcheck // best-effort cleanup of a corrupt entry
		return nil, false, nil
	}

	return &resp, true, nil
}

// Set stores resp under the key derived from req, using ttl or the cache's
// default TTL if ttl is zero.
func (d *DispatchCache) Set(ctx context.Context, req *engine.Request, resp *engine.Response, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = d.defaultTTL
	}

	key := BuildResponseKey(RequestHash(req))

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return d.cache.Set(ctx, key, data, ttl)
}

// Invalidate removes the cached response for req, if any.
func (d *DispatchCache) Invalidate(ctx context.Context, req *engine.Request) error {
	key := BuildResponseKey(RequestHash(req))
	return d.cache.Delete(ctx, key)
}

// InvalidateAll removes every cached response.
func (d *DispatchCache) InvalidateAll(ctx context.Context) (int64, error) {
	return d.cache.DeleteByPattern(ctx, "dispatch:solve:*")
}
