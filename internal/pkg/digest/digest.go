// Package digest computes the content fingerprints used for dedup:
// entry bodies, poem versions and reference quotes.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Of returns the hex SHA-256 of s with surrounding whitespace stripped,
// so trailing-newline churn does not register as a content change.
func Of(s string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(s)))
	return hex.EncodeToString(sum[:])
}
