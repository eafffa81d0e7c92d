package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a cache key of the form "prefix:<sha256>" from the given
// components. Components are JSON-encoded into the hash, so any struct whose
// fields participate in a stage's identity (layout spacing, render flags)
// can be passed directly.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range parts {
		// Encoding into a hash cannot fail for the option structs used here.
		_ = enc.Encode(part)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Used to content-address input files
// so a re-run over an unchanged GEDCOM file hits the cache.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
