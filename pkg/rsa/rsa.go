package rsa

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// DefaultExponent is the public exponent used by GenerateKeyPair.
const DefaultExponent = 65537

var one = big.NewInt(1)

// PublicKey is an RSA public key (n, e).
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// PrivateKey is an RSA private key.  It keeps the primes and the totient so
// the worked examples can print every intermediate value.
type PrivateKey struct {
	PublicKey
	D   *big.Int
	P   *big.Int
	Q   *big.Int
	Phi *big.Int
}

// Signature is a raw RSA signature digest^d mod n.
type Signature struct {
	S *big.Int
}

// MinBitLength is the smallest prime size that still leaves two distinct
// primes to choose from (5 and 7).
const MinBitLength = 3

// GenerateKeyPair generates two distinct primes of bitLength bits each and
// derives a key with e = 65537.
//
// If 65537 shares a factor with φ(n) it fails with ErrIncompatibleExponent;
// the caller is expected to try again with fresh primes.
func GenerateKeyPair(random io.Reader, bitLength int) (*PrivateKey, error) {
	return generateKeyPair(bitLength, func() (*big.Int, error) {
		return field.GeneratePrime(random, bitLength)
	})
}

// GenerateKeyPairParallel is GenerateKeyPair with each prime searched by
// workers goroutines. It stops with ctx.Err() once ctx is done.
func GenerateKeyPairParallel(ctx context.Context, random io.Reader, bitLength, workers int) (*PrivateKey, error) {
	return generateKeyPair(bitLength, func() (*big.Int, error) {
		res, err := field.GeneratePrimeParallel(ctx, random, bitLength, workers)
		if err != nil {
			return nil, err
		}
		return res.Prime, nil
	})
}

func generateKeyPair(bitLength int, nextPrime func() (*big.Int, error)) (*PrivateKey, error) {
	if bitLength < MinBitLength {
		return nil, pkcerr.New(pkcerr.ErrInvalidBitLength,
			fmt.Sprintf("rsa needs primes of at least %d bits, got %d", MinBitLength, bitLength))
	}
	p, err := nextPrime()
	if err != nil {
		return nil, err
	}
	var q *big.Int
	for {
		q, err = nextPrime()
		if err != nil {
			return nil, err
		}
		if q.Cmp(p) != 0 {
			break
		}
	}
	return NewKeyFromPrimes(p, q, big.NewInt(DefaultExponent))
}

// NewKeyFromPrimes builds a key from known primes p and q and exponent e.
//
// The primes must be distinct and pass a probabilistic primality test, and
// e must be greater than 1 and coprime with φ(n) = (p-1)(q-1).
func NewKeyFromPrimes(p, q, e *big.Int) (*PrivateKey, error) {
	if p == nil || q == nil || e == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "primes and exponent must not be nil")
	}
	if p.Cmp(q) == 0 {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "p and q must be distinct")
	}
	if !field.IsProbablePrime(p) || !field.IsProbablePrime(q) {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "p and q must be prime")
	}
	if e.Cmp(one) <= 0 {
		return nil, pkcerr.New(pkcerr.ErrIncompatibleExponent, "public exponent must be greater than 1")
	}

	n := new(big.Int).Mul(p, q)
	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	if field.GCD(e, phi).Cmp(one) != 0 {
		str := fmt.Sprintf("exponent %s is not coprime with φ(n)", e)
		return nil, pkcerr.New(pkcerr.ErrIncompatibleExponent, str)
	}
	d, err := field.ModInverse(e, phi)
	if err != nil {
		return nil, pkcerr.New(pkcerr.ErrIncompatibleExponent, err.Error())
	}

	return &PrivateKey{
		PublicKey: PublicKey{N: n, E: new(big.Int).Set(e)},
		D:         d,
		P:         new(big.Int).Set(p),
		Q:         new(big.Int).Set(q),
		Phi:       phi,
	}, nil
}

// Encrypt returns m^e mod n.  m must lie in [0, n-1], otherwise it fails with
// ErrMessageTooLarge.
func Encrypt(pub *PublicKey, m *big.Int) (*big.Int, error) {
	if err := checkRange(pub, m, "message"); err != nil {
		return nil, err
	}
	return field.ModPow(m, pub.E, pub.N)
}

// Decrypt returns c^d mod n.  c must lie in [0, n-1].
func Decrypt(priv *PrivateKey, c *big.Int) (*big.Int, error) {
	if priv == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "private key must not be nil")
	}
	if err := checkRange(&priv.PublicKey, c, "ciphertext"); err != nil {
		return nil, err
	}
	return field.ModPow(c, priv.D, priv.N)
}

// Sign returns the raw signature digest^d mod n.  The digest must lie in
// [0, n-1]; callers with large hashes must use a modulus wider than the hash.
func Sign(priv *PrivateKey, digest *big.Int) (*Signature, error) {
	if priv == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "private key must not be nil")
	}
	if err := checkRange(&priv.PublicKey, digest, "digest"); err != nil {
		return nil, err
	}
	s, err := field.ModPow(digest, priv.D, priv.N)
	if err != nil {
		return nil, err
	}
	return &Signature{S: s}, nil
}

// Verify reports whether sig^e mod n equals digest.  Malformed input yields
// false.
func Verify(pub *PublicKey, digest *big.Int, sig *Signature) bool {
	if sig == nil || checkRange(pub, digest, "digest") != nil || checkRange(pub, sig.S, "signature") != nil {
		return false
	}
	v, err := field.ModPow(sig.S, pub.E, pub.N)
	if err != nil {
		return false
	}
	return v.Cmp(digest) == 0
}

// checkRange fails with ErrMessageTooLarge unless 0 <= v < n.
func checkRange(pub *PublicKey, v *big.Int, what string) error {
	if pub == nil || pub.N == nil || pub.E == nil || pub.N.Sign() <= 0 {
		return pkcerr.New(pkcerr.ErrInvalidDomain, "public key is incomplete")
	}
	if v == nil || v.Sign() < 0 || v.Cmp(pub.N) >= 0 {
		str := fmt.Sprintf("%s must lie in [0, n-1]", what)
		return pkcerr.New(pkcerr.ErrMessageTooLarge, str)
	}
	return nil
}
