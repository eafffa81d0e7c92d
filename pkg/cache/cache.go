// Package cache provides content-addressed caching for pipeline stages.
//
// Decoding a large GEDCOM file and computing a canvas layout are both pure
// functions of their inputs, so results are cached under SHA-256 content
// hashes and reused across runs. Three backends implement the same interface:
//
//   - FileCache: per-user cache directory for CLI usage
//   - RedisCache: shared cache for setups where several machines regenerate
//     the same vault
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached artifact classes.
const (
	// TTLTree is the lifetime of cached person trees. Input files rarely
	// change without their content hash changing too, so this is generous.
	TTLTree = 30 * 24 * time.Hour

	// TTLCanvas is the lifetime of cached canvas documents.
	TTLCanvas = 30 * 24 * time.Hour

	// TTLArtifact is the lifetime of rendered artifacts (SVG, DOT).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for use from a single goroutine; the
// pipeline is a synchronous batch computation.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// TreeKeyOpts are the decode options that affect the cached person tree.
type TreeKeyOpts struct {
	// StrictDates toggles strict year extraction during decoding.
	StrictDates bool
}

// CanvasKeyOpts are the layout options that affect the cached canvas document.
// Any field change must produce a different key, or stale layouts would be
// served after a config edit.
type CanvasKeyOpts struct {
	Root              string
	NodeWidth         float64
	NodeHeight        float64
	ImageHeight       float64
	GenerationSpacing float64
	SiblingSpacing    float64
	ClusterSpacing    float64
}

// ArtifactKeyOpts are the render options that affect cached artifacts.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// TreeKey generates a key for a decoded person tree,
	// from the input file's content hash.
	TreeKey(fileHash string, opts TreeKeyOpts) string

	// CanvasKey generates a key for a canvas document,
	// from the tree's content hash and the layout options.
	CanvasKey(treeHash string, opts CanvasKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact,
	// from the tree's content hash and the render options.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for a decoded person tree.
func (k *DefaultKeyer) TreeKey(fileHash string, opts TreeKeyOpts) string {
	return hashKey("tree", fileHash, opts)
}

// CanvasKey generates a key for a canvas document.
func (k *DefaultKeyer) CanvasKey(treeHash string, opts CanvasKeyOpts) string {
	return hashKey("canvas", treeHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}
