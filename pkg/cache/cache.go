// Package cache provides storage for generated layouts and rendered
// artifacts.
//
// # Overview
//
// Generation is deterministic for a given project and seed, so its outputs
// can be cached by content. Two kinds of entries exist:
//
//   - Layouts, keyed by a hash of the project plus the seed
//   - Artifacts (DOT, SVG, PNG, ...), keyed by a hash of the layout plus the
//     output format and render options
//
// # Backends
//
//   - [FileCache]: files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing
//
// Key construction is separated into the [Keyer] interface so servers can
// scope keys per tenant with [ScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// TTLLayout applies to generated layouts.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered artifacts.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache stores opaque byte values by string key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout generated from a project.
	LayoutKey(projectHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the generation inputs that are not part of the project
// hash.
type LayoutKeyOpts struct {
	Seed  uint64  `json:"seed"`
	Scale float64 `json:"scale,omitempty"`
}

// ArtifactKeyOpts holds render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Regions  bool   `json:"regions,omitempty"`
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(projectHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", projectHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
