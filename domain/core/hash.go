package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first n hex characters, or the whole hash when shorter.
func (h Hash) Short(n int) string {
	if n <= 0 || n >= len(h) {
		return string(h)
	}
	return string(h[:n])
}

// Hasher accumulates length-prefixed parts into a sha256 digest so that
// ("ab","c") and ("a","bc") never collide.
type Hasher struct {
	h hash.Hash
}

// NewHasher creates an empty incremental hasher
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write adds one part to the digest
func (x *Hasher) Write(part string) {
	var prefix [8]byte
	n := uint64(len(part))
	for i := 0; i < 8; i++ {
		prefix[i] = byte(n >> (8 * i))
	}
	x.h.Write(prefix[:])
	x.h.Write([]byte(part))
}

// Sum returns the accumulated hash
func (x *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(x.h.Sum(nil)))
}
