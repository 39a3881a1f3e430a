// Package cache provides byte-level caching for repository fetches.
//
// Backends share one interface: file-based for CLI usage, Redis for
// multi-instance deployments, and a null cache for tests or --no-cache runs.
// Entries carry a TTL and an explicit not-found marker so negative lookups
// (a path absent from a remote repository) are cached as firmly as positive
// ones and never re-hit the source.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrBackend is returned when a cache backend itself fails (I/O error,
// connection refused). Backend failures are advisory; callers treat them as
// misses.
var ErrBackend = errors.New("cache backend error")

// Entry is a cached fetch result. NotFound records a definitive negative
// answer from the source, as opposed to a cache miss.
type Entry struct {
	Data     []byte `json:"data,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
}

// Cache stores fetch results keyed by opaque strings.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves an entry. The second return is false on a miss.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores an entry with the given TTL. A TTL of 0 never expires.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Hash computes the SHA-256 hex digest of data. Used to derive filesystem-
// and Redis-safe key names from repository paths.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
