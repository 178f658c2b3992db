// Package checksum computes content digests used for change detection and
// optimistic concurrency on language files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data hashes to want. want may be a quoted
// HTTP entity tag; an empty want always matches.
func Matches(data []byte, want string) bool {
	want = strings.Trim(strings.TrimPrefix(strings.TrimSpace(want), "W/"), `"`)
	if want == "" {
		return true
	}
	return Sum(data) == want
}
