// Package cache stores computed results between runs.
//
// Canonical forms and refinements are pure functions of the input graph and
// the search options, so the pipeline keys them by a hash of both and stores
// the JSON-encoded result. Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one file per entry under the user cache dir
//   - [RedisCache] for the server, shared between instances
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer]. [ScopedKeyer] prefixes them so several
// deployments can share one Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Default TTLs.
const (
	TTLCanon  = 30 * 24 * time.Hour
	TTLRefine = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// GetJSON loads the value under key into v. It returns ErrCacheMiss when
// there is no entry.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
