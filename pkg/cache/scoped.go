package cache

// ScopedKeyer wraps a Keyer with a prefix so several vaults can share one
// cache backend without colliding, e.g. one Redis instance holding caches
// for multiple family archives.
//
// Example usage:
//
//	vaultKeyer := NewScopedKeyer(NewDefaultKeyer(), "vault:smith:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreeKey generates a prefixed key for decoded person trees.
func (k *ScopedKeyer) TreeKey(fileHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(fileHash, opts)
}

// CanvasKey generates a prefixed key for canvas documents.
func (k *ScopedKeyer) CanvasKey(treeHash string, opts CanvasKeyOpts) string {
	return k.prefix + k.inner.CanvasKey(treeHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
