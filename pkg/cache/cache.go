// Package cache provides the render cache shared by the CLI and the HTTP API.
//
// Keys are derived from a SHA-256 hash of everything that can change the
// output: the workflow structure, the run-state snapshot, the palette and the
// render options. Two backends are provided besides [NullCache]:
//
//   - [FileCache] stores entries under ~/.cache/flowdot for CLI use
//   - [RedisCache] shares entries between API instances
//
// A cache is an optimization only. Callers treat every backend error as a
// miss and re-render.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLRender applies to rendered workflow graphs. Run state is part of
	// the key, so entries never go stale; the TTL only bounds disk usage.
	TTLRender = 24 * time.Hour

	// TTLDependencies applies to rendered cross-workflow graphs.
	TTLDependencies = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}
