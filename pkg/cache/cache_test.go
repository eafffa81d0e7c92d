package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "tree:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "tree:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit after Set")
	}
	if string(data) != "payload" {
		t.Errorf("Get returned %q, want %q", data, "payload")
	}

	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:abc"); hit {
		t.Error("expected miss after Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Negative TTL is already expired at read time.
	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// TreeKey should include options in hash
	tk1 := k.TreeKey("filehash", TreeKeyOpts{StrictDates: false})
	tk2 := k.TreeKey("filehash", TreeKeyOpts{StrictDates: true})
	if tk1 == tk2 {
		t.Error("Different TreeKeyOpts should produce different keys")
	}

	// CanvasKey varies with root and spacing
	ck1 := k.CanvasKey("hash123", CanvasKeyOpts{Root: "@I1@", GenerationSpacing: 350})
	ck2 := k.CanvasKey("hash123", CanvasKeyOpts{Root: "@I2@", GenerationSpacing: 350})
	ck3 := k.CanvasKey("hash123", CanvasKeyOpts{Root: "@I1@", GenerationSpacing: 400})
	if ck1 == ck2 {
		t.Error("Different roots should produce different keys")
	}
	if ck1 == ck3 {
		t.Error("Different spacing should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "vault:smith:")

	key := scoped.TreeKey("filehash", TreeKeyOpts{})
	if len(key) < 12 || key[:12] != "vault:smith:" {
		t.Errorf("ScopedKeyer TreeKey should be prefixed: %s", key)
	}
	if key == inner.TreeKey("filehash", TreeKeyOpts{}) {
		t.Error("scoped key should differ from unscoped key")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().CanvasKey("h", CanvasKeyOpts{})
	if got := scoped.CanvasKey("h", CanvasKeyOpts{}); got != want {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}
