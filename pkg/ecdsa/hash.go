package ecdsa

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Hasher turns a message into the digest integer e that Sign and Verify
// consume.  The digest is the big-endian value of the hash output and is not
// reduced modulo n; the scheme reduces it where needed.
type Hasher interface {
	// Hash returns the digest of msg as a non-negative integer.
	Hash(msg []byte) *big.Int

	// Name returns the name accepted by HasherByName.
	Name() string
}

type hashFunc struct {
	name string
	sum  func([]byte) []byte
}

func (h hashFunc) Hash(msg []byte) *big.Int {
	return new(big.Int).SetBytes(h.sum(msg))
}

func (h hashFunc) Name() string {
	return h.name
}

// Supported hash functions.
var (
	SHA256 Hasher = hashFunc{name: "sha256", sum: func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	}}

	SHA3_256 Hasher = hashFunc{name: "sha3-256", sum: func(b []byte) []byte {
		h := sha3.Sum256(b)
		return h[:]
	}}

	BLAKE2b256 Hasher = hashFunc{name: "blake2b-256", sum: func(b []byte) []byte {
		h := blake2b.Sum256(b)
		return h[:]
	}}
)

// HashMessage hashes msg with h, or with SHA256 when h is nil.
func HashMessage(h Hasher, msg []byte) *big.Int {
	if h == nil {
		h = SHA256
	}
	return h.Hash(msg)
}

// HasherByName returns the hasher registered under name, ignoring case.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "sha3-256", "sha3_256", "sha3":
		return SHA3_256, nil
	case "blake2b-256", "blake2b256", "blake2b":
		return BLAKE2b256, nil
	}
	return nil, fmt.Errorf("unknown hash function %q", name)
}
