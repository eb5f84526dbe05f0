// Package cache stores generated mosaics and rendered artifacts.
//
// Generation is deterministic, so any mosaic or artifact can be cached
// under a key derived from the inputs that produced it. Three backends
// implement [Cache]:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the inputs; wrap it in a
// [ScopedKeyer] to give a deployment its own namespace. [Instrument] adds
// observability hooks to any backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Pruner is implemented by caches that hold on to expired entries until
// they are read. Prune drops them eagerly and reports how many went.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Entry lifetimes.
const (
	TTLMosaic   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types, as reported to cache hooks.
const (
	KeyTypeMosaic   = "mosaic"
	KeyTypeArtifact = "artifact"
)

// =============================================================================
// Keys
// =============================================================================

// MosaicKeyOpts are the generation inputs a mosaic depends on.
type MosaicKeyOpts struct {
	Seed              uint32   `json:"seed"`
	Width             float64  `json:"width"`
	Height            float64  `json:"height"`
	Cells             int      `json:"cells"`
	Inks              []string `json:"inks"`
	Jitter            float64  `json:"jitter"`
	Extra             float64  `json:"extra"`
	Inset             float64  `json:"inset"`
	Network           string   `json:"network"`
	Seam              string   `json:"seam"`
	MinWidth          float64  `json:"min_width"`
	MaxWidth          float64  `json:"max_width"`
	DisableEdgeJitter bool     `json:"disable_edge_jitter"`
}

// ArtifactKeyOpts are the render settings an artifact depends on beyond
// the mosaic itself.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Margin  float64 `json:"margin"`
	Deckle  bool    `json:"deckle"`
	Streaks bool    `json:"streaks"`
	Scale   float64 `json:"scale"`
	Labels  bool    `json:"labels"`
}

// Keyer derives cache keys.
type Keyer interface {
	// MosaicKey keys a generated mosaic by its inputs.
	MosaicKey(opts MosaicKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of the serialized
	// mosaic and the render settings.
	ArtifactKey(mosaicHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MosaicKey returns "mosaic:<sha256>".
func (DefaultKeyer) MosaicKey(opts MosaicKeyOpts) string {
	return hashKey(KeyTypeMosaic, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(mosaicHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, mosaicHash, opts)
}
