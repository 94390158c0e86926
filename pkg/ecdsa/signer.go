package ecdsa

import "io"

// Signer pairs a private key with a source of randomness and a hash function
// so callers can sign and verify messages rather than digests.
type Signer struct {
	key    *PrivateKey
	random io.Reader
	hasher Hasher
}

// NewSigner creates a Signer for priv using crypto/rand.Reader and SHA256.
func NewSigner(priv *PrivateKey) *Signer {
	return &Signer{
		key:    priv,
		hasher: SHA256,
	}
}

// WithRand sets the source of nonces.  A nil reader restores crypto/rand.
func (s *Signer) WithRand(random io.Reader) *Signer {
	s.random = random
	return s
}

// WithHasher sets the hash function applied to messages.
func (s *Signer) WithHasher(h Hasher) *Signer {
	if h == nil {
		h = SHA256
	}
	s.hasher = h
	return s
}

// Hasher returns the hash function in use.
func (s *Signer) Hasher() Hasher {
	return s.hasher
}

// PublicKey returns the verification key.
func (s *Signer) PublicKey() *PublicKey {
	if s.key == nil {
		return nil
	}
	return s.key.Public()
}

// SignMessage hashes msg and signs the digest.
func (s *Signer) SignMessage(msg []byte) (*Signature, error) {
	return Sign(s.random, s.key, s.hasher.Hash(msg))
}

// VerifyMessage hashes msg and verifies sig against the signer's public key.
func (s *Signer) VerifyMessage(msg []byte, sig *Signature) bool {
	if s.key == nil {
		return false
	}
	return Verify(&s.key.PublicKey, s.hasher.Hash(msg), sig)
}
