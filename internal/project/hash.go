package project

import (
	"crypto/sha256"
)

// Digest is a SHA-256 content hash.
type Digest [32]byte

// Combine hashes content followed by deps: H(content || dep1 || dep2 ...).
// The order of deps must be deterministic.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashBytes returns the SHA-256 digest of data.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}
