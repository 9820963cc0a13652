// Package sha256 derives content digests for ETags and output file names.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the lowercase hex SHA-256 digest of data.
func Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short returns the first n hex characters of the digest. n outside 1..64
// yields the full digest.
func Short(data []byte, n int) string {
	digest := Hex(data)
	if n <= 0 || n >= len(digest) {
		return digest
	}
	return digest[:n]
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	return `"` + Short(body, 32) + `"`
}
