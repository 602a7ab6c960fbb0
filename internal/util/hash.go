package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex sha256 of raw file bytes, used as the
// incremental-cache validity key. Content-derived on purpose: a touch-only
// change must still hit the cache.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashStrings hashes the concatenation of parts with separators, for keys
// built from several inputs (e.g. scanner version + rule file content).
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
