// Package checksum fingerprints record contents for change detection and
// optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether want is empty or equal to the digest of data.
func Matches(data []byte, want string) bool {
	return want == "" || want == Sum(data)
}
