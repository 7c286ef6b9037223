// Package hashutil provides the hash primitives used to build cache
// fingerprints. Grounded on rohmanhakim-docs-crawler's pkg/hashutil, which
// supports the same two algorithms for the same purpose (content-keyed
// hashing), extended here with a canonical key-value encoding so callers
// don't have to hand-roll delimiter-joining (a source of fingerprint bugs:
// "a|b" and "a|b" built from different field splits must never collide).
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// Algo selects the hash function used to build a fingerprint.
type Algo string

const (
	SHA256 Algo = "sha256"
	BLAKE3 Algo = "blake3"
)

// HashBytes returns the hex-encoded hash of data using the given algorithm.
func HashBytes(data []byte, algo Algo) (string, error) {
	switch algo {
	case SHA256, "":
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case BLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("hashutil: unsupported algorithm %q", algo)
	}
}

// CanonicalEncode builds a stable byte encoding of a set of key/value pairs
// by sorting on key and joining with unambiguous separators. Used as the
// pre-image for fingerprint hashing so field order never affects the hash.
func CanonicalEncode(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('\x1f') // unit separator, not expected in field values
	}
	return []byte(b.String())
}
