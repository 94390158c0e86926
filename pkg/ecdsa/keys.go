package ecdsa

import (
	"fmt"
	"io"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// PublicKey is a point Q = d·G on the curve of Domain.
type PublicKey struct {
	Domain *curve.DomainParams
	Q      curve.Point
}

// PrivateKey holds the secret scalar D in [1, n-1] next to its public key.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// Signature is an ECDSA signature (r, s) with both components in [1, n-1].
type Signature struct {
	R *big.Int
	S *big.Int
}

// GenerateKeyPair draws d uniformly from [1, n-1] and returns the key pair
// (d, d·G).  A nil random selects crypto/rand.Reader.
func GenerateKeyPair(random io.Reader, d *curve.DomainParams) (*PrivateKey, error) {
	if d == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "domain parameters must not be nil")
	}

	secret, err := field.RandomScalar(random, d.N)
	if err != nil {
		return nil, err
	}
	return newPrivateKey(d, secret), nil
}

// NewPrivateKey builds a key pair from a known secret scalar.  It fails with
// ErrInvalidScalar unless 1 <= secret <= n-1.
func NewPrivateKey(d *curve.DomainParams, secret *big.Int) (*PrivateKey, error) {
	if d == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "domain parameters must not be nil")
	}
	if !inRange(secret, d.N) {
		str := fmt.Sprintf("private scalar is outside [1, n-1] for curve %s", d.Name)
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, str)
	}
	return newPrivateKey(d, secret), nil
}

func newPrivateKey(d *curve.DomainParams, secret *big.Int) *PrivateKey {
	return &PrivateKey{
		PublicKey: PublicKey{Domain: d, Q: curve.ScalarBaseMultiply(d, secret)},
		D:         new(big.Int).Set(secret),
	}
}

// NewPublicKey validates (x, y) as a public key on d: the point must be on the
// curve, must not be the identity and must lie in the subgroup generated by G.
func NewPublicKey(d *curve.DomainParams, x, y *big.Int) (*PublicKey, error) {
	if d == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "domain parameters must not be nil")
	}
	q, err := curve.NewPoint(d, x, y)
	if err != nil {
		return nil, err
	}
	if d.H.Cmp(big.NewInt(1)) != 0 && !curve.ScalarMultiply(d, d.N, q).IsIdentity() {
		str := fmt.Sprintf("point %s is not in the subgroup generated by G", q)
		return nil, pkcerr.New(pkcerr.ErrInvalidPoint, str)
	}
	return &PublicKey{Domain: d, Q: q}, nil
}

// Public returns the public half of the key pair.
func (priv *PrivateKey) Public() *PublicKey {
	pub := priv.PublicKey
	return &pub
}

// Equal reports whether two public keys share a domain and a point.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	return pub.Domain == other.Domain && pub.Q.Equal(other.Q)
}

// inRange reports whether 1 <= v <= n-1.
func inRange(v, n *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(n) < 0
}

// validate checks that both components of sig lie in [1, n-1].
func (sig *Signature) validate(n *big.Int) error {
	if sig == nil || !inRange(sig.R, n) || !inRange(sig.S, n) {
		return pkcerr.New(pkcerr.ErrInvalidSignatureRange,
			"signature components must lie in [1, n-1]")
	}
	return nil
}

// String returns the signature as "(r, s)" in hex.
func (sig *Signature) String() string {
	return fmt.Sprintf("(0x%x, 0x%x)", sig.R, sig.S)
}
