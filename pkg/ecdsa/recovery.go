package ecdsa

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// SignedDigest is a signature together with the digest it signs, as read
// from a signature file.
type SignedDigest struct {
	Z *big.Int // digest of the message
	R *big.Int // r component of the signature
	S *big.Int // s component of the signature
}

// Signature returns the (r, s) part of the record.
func (sd *SignedDigest) Signature() *Signature {
	return &Signature{R: sd.R, S: sd.S}
}

// AffineRelationship describes two nonces related by k2 = A·k1 + B.
type AffineRelationship struct {
	A *big.Int
	B *big.Int
}

// RecoveryResult describes a private key derived from a pair of signatures.
type RecoveryResult struct {
	PrivateKey    *PrivateKey        // recovered key pair
	Relationship  AffineRelationship // relation between the two nonces
	SignaturePair [2]int             // indices of the signatures used
	Pattern       string             // short description of the relation
	Tested        int64              // candidate relations tried
}

// RecoverPrivateKey derives the private key from two signatures whose nonces
// satisfy k2 = a·k1 + b:
//
//	priv = (a·s2·z1 - s1·z2 + b·s1·s2) / (r2·s1 - a·r1·s2) mod n
//
// Same-nonce reuse is the case a = 1, b = 0.  The result is not checked
// against any public key.  It fails with ErrNoRecovery when the denominator
// vanishes or the derived scalar is zero.
func RecoverPrivateKey(d *curve.DomainParams, sig1, sig2 *SignedDigest, a, b *big.Int) (*big.Int, error) {
	if d == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "domain parameters must not be nil")
	}
	if b == nil {
		return nil, pkcerr.New(pkcerr.ErrNoRecovery, "signature records and relation must be complete")
	}

	alpha, beta, err := keyLine(d.N, sig1, sig2, a)
	if err != nil {
		return nil, err
	}

	priv := new(big.Int).Mul(b, beta)
	priv.Add(priv, alpha)
	priv.Mod(priv, d.N)
	if priv.Sign() == 0 {
		return nil, pkcerr.New(pkcerr.ErrNoRecovery, "recovered scalar is zero")
	}
	return priv, nil
}

// keyLine splits the recovery formula for a fixed a into priv = alpha + b·beta
// (mod n), with
//
//	alpha = (a·s2·z1 - s1·z2) / (r2·s1 - a·r1·s2)
//	beta  = s1·s2 / (r2·s1 - a·r1·s2)
func keyLine(n *big.Int, sig1, sig2 *SignedDigest, a *big.Int) (alpha, beta *big.Int, err error) {
	if !complete(sig1) || !complete(sig2) || a == nil {
		return nil, nil, pkcerr.New(pkcerr.ErrNoRecovery, "signature records and relation must be complete")
	}

	// r2·s1 - a·r1·s2
	r2s1 := new(big.Int).Mul(sig2.R, sig1.S)

	ar1s2 := new(big.Int).Mul(a, sig1.R)
	ar1s2.Mul(ar1s2, sig2.S)

	denominator := new(big.Int).Sub(r2s1, ar1s2)
	denominator.Mod(denominator, n)

	denominatorInv, err := field.ModInverse(denominator, n)
	if err != nil {
		return nil, nil, pkcerr.New(pkcerr.ErrNoRecovery, "denominator is zero: cannot recover private key")
	}

	// a·s2·z1 - s1·z2
	as2z1 := new(big.Int).Mul(a, sig2.S)
	as2z1.Mul(as2z1, sig1.Z)

	s1z2 := new(big.Int).Mul(sig1.S, sig2.Z)

	alpha = new(big.Int).Sub(as2z1, s1z2)
	alpha.Mul(alpha, denominatorInv)
	alpha.Mod(alpha, n)

	beta = new(big.Int).Mul(sig1.S, sig2.S)
	beta.Mul(beta, denominatorInv)
	beta.Mod(beta, n)

	return alpha, beta, nil
}

// VerifyRecoveredKey reports whether secret is the private key behind pub.
func VerifyRecoveredKey(pub *PublicKey, secret *big.Int) bool {
	if pub == nil || pub.Domain == nil || !inRange(secret, pub.Domain.N) {
		return false
	}
	return curve.ScalarBaseMultiply(pub.Domain, secret).Equal(pub.Q)
}

// FindNonceReuse looks for two signatures sharing the same r, which almost
// always means they share a nonce, and returns the private key recovered from
// the first such pair that matches pub.  It fails with ErrNoRecovery when no
// pair yields the key.
func FindNonceReuse(pub *PublicKey, sigs []*SignedDigest) (*RecoveryResult, error) {
	if pub == nil || pub.Domain == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "public key must not be nil")
	}

	one, zero := big.NewInt(1), big.NewInt(0)
	var tested int64
	for i := 0; i < len(sigs); i++ {
		for j := i + 1; j < len(sigs); j++ {
			if !complete(sigs[i]) || !complete(sigs[j]) || sigs[i].R.Cmp(sigs[j].R) != 0 {
				continue
			}
			tested++
			if result := tryRelation(pub, sigs, i, j, one, zero); result != nil {
				result.Pattern = "same_nonce_reuse"
				result.Tested = tested
				return result, nil
			}
		}
	}

	str := fmt.Sprintf("no reused nonce among %d signatures", len(sigs))
	return nil, pkcerr.New(pkcerr.ErrNoRecovery, str)
}

// tryRelation recovers a key from sigs[i] and sigs[j] under (a, b) and returns
// a result only when the key matches pub.
func tryRelation(pub *PublicKey, sigs []*SignedDigest, i, j int, a, b *big.Int) *RecoveryResult {
	secret, err := RecoverPrivateKey(pub.Domain, sigs[i], sigs[j], a, b)
	if err != nil || !VerifyRecoveredKey(pub, secret) {
		return nil
	}

	return &RecoveryResult{
		PrivateKey:    newPrivateKey(pub.Domain, secret),
		Relationship:  AffineRelationship{A: new(big.Int).Set(a), B: new(big.Int).Set(b)},
		SignaturePair: [2]int{i, j},
	}
}

func complete(sd *SignedDigest) bool {
	return sd != nil && sd.Z != nil && sd.R != nil && sd.S != nil
}
