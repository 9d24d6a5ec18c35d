// Package cache stores rendered screenshots between runs.
//
// Rendering is deterministic, so a screenshot is fully determined by the
// text drawn and the theme used. [Keyer] turns those inputs into a key and
// [Cache] stores the encoded PNG under it. Re-packing an unchanged submission
// then skips the rasterizer entirely.
//
// Two backends are provided: [FileCache] for the CLI, which keeps entries
// under the user cache directory, and [NullCache], which stores nothing and
// is used when caching is disabled with --no-cache.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a rendered screenshot stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store keyed by strings.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
