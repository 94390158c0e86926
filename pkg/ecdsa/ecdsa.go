package ecdsa

import (
	"fmt"
	"io"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// Sign signs the digest e with priv.
//
// A fresh nonce k is drawn from random (crypto/rand.Reader when nil) for every
// attempt.  The attempt is discarded and repeated whenever r = (k·G).x mod n or
// s = k⁻¹(e + d·r) mod n comes out as zero, so the returned signature always
// has r and s in [1, n-1].
func Sign(random io.Reader, priv *PrivateKey, e *big.Int) (*Signature, error) {
	if err := checkPrivateKey(priv); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, "digest must not be nil")
	}

	for {
		k, err := field.RandomScalar(random, priv.Domain.N)
		if err != nil {
			return nil, err
		}

		sig, ok := signWithNonce(priv, e, k)
		if ok {
			return sig, nil
		}
	}
}

// SignWithNonce signs e with a caller-chosen nonce k in [1, n-1].  It exists
// to reproduce known test vectors and to demonstrate nonce reuse; a nonce must
// never be chosen this way for a real signature.
//
// Unlike Sign it cannot retry, so it fails with ErrInvalidScalar when k yields
// r = 0 or s = 0.
func SignWithNonce(priv *PrivateKey, e, k *big.Int) (*Signature, error) {
	if err := checkPrivateKey(priv); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, "digest must not be nil")
	}
	if !inRange(k, priv.Domain.N) {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, "nonce is outside [1, n-1]")
	}

	sig, ok := signWithNonce(priv, e, k)
	if !ok {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar,
			fmt.Sprintf("nonce 0x%x produces a zero signature component", k))
	}
	return sig, nil
}

// signWithNonce computes one signing attempt.  It reports false when r or s is
// zero.
func signWithNonce(priv *PrivateKey, e, k *big.Int) (*Signature, bool) {
	d := priv.Domain
	n := d.N

	// k is in [1, n-1] and G has order n, so k·G is never the identity.
	kG := curve.ScalarBaseMultiply(d, k)
	r := new(big.Int).Mod(kG.X(), n)
	if r.Sign() == 0 {
		return nil, false
	}

	// n is prime, so k is always invertible.
	kInv, err := field.ModInverse(k, n)
	if err != nil {
		return nil, false
	}

	s := new(big.Int).Mul(priv.D, r)
	s.Add(s, e)
	s.Mul(s, kInv)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, false
	}
	return &Signature{R: r, S: s}, true
}

// Verify reports whether sig is a valid signature of the digest e under pub.
//
// Any malformed input (nil values, components outside [1, n-1], an identity
// public key) yields false; Verify never panics and never returns an error.
func Verify(pub *PublicKey, e *big.Int, sig *Signature) bool {
	if pub == nil || pub.Domain == nil || pub.Q.IsIdentity() || e == nil {
		return false
	}
	d := pub.Domain
	n := d.N

	if err := sig.validate(n); err != nil {
		return false
	}

	w, err := field.ModInverse(sig.S, n)
	if err != nil {
		return false
	}

	u1 := new(big.Int).Mul(e, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, n)

	x := curve.Add(d, curve.ScalarBaseMultiply(d, u1), curve.ScalarMultiply(d, u2, pub.Q))
	if x.IsIdentity() {
		return false
	}

	v := x.X()
	v.Mod(v, n)
	return v.Cmp(sig.R) == 0
}

func checkPrivateKey(priv *PrivateKey) error {
	if priv == nil || priv.Domain == nil {
		return pkcerr.New(pkcerr.ErrInvalidScalar, "private key must not be nil")
	}
	if !inRange(priv.D, priv.Domain.N) {
		return pkcerr.New(pkcerr.ErrInvalidScalar, "private scalar is outside [1, n-1]")
	}
	return nil
}
