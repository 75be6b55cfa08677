// Package cache memoizes rendered graph images.
//
// Rendering a large graph can take seconds; re-rendering an unchanged
// document is pure waste. The cache stores rendered image bytes keyed by a
// hash of the DOT description, the output format, and the layout engine, so
// a repeat run with identical inputs returns the cached image.
//
// Three backends are provided:
//
//   - [FileCache]: entries on local disk, the default for CLI usage
//   - [RedisCache]: shared cache for machines that already run Redis
//   - [NullCache]: no-op backend for --no-cache
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores rendered artifacts by key.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RenderKey derives the cache key for a render invocation.
// Identical DOT, format, and layout always yield the same key.
func RenderKey(dot, format, layout string) string {
	h := sha256.New()
	h.Write([]byte(dot))
	h.Write([]byte{0})
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write([]byte(layout))
	return "render:" + hex.EncodeToString(h.Sum(nil))
}
