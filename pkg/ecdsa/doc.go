// Package ecdsa implements textbook ECDSA over any curve described by a
// curve.DomainParams.
//
// Keys, signing and verification are plain functions of explicit inputs.
// Digests are integers: callers either hash messages themselves through a
// Hasher or use a Signer, which pairs a key with a hash function.
//
// # Quick Start
//
//	priv, err := ecdsa.GenerateKeyPair(nil, curve.P256())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	signer := ecdsa.NewSigner(priv).WithHasher(ecdsa.SHA3_256)
//	sig, err := signer.SignMessage([]byte("hello"))
//	ok := signer.VerifyMessage([]byte("hello"), sig)
//
// # Nonce reuse
//
// The nonce k must be fresh and secret for every signature.  When two
// signatures were made with nonces related by k₂ = a·k₁ + b and the relation
// is known, RecoverPrivateKey derives the private key from them:
//
//	priv = (a·s₂·z₁ - s₁·z₂ + b·s₁·s₂) / (r₂·s₁ - a·r₁·s₂) mod n
//
// FindNonceReuse and SearchAffineNonces scan a set of signatures for such
// pairs and check every candidate key against the public key.
//
// This package performs variable-time arithmetic and must not be used to
// protect real secrets.
package ecdsa
