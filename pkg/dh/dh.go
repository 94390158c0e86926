// Package dh implements finite-field Diffie-Hellman key agreement over a safe
// prime group.
//
// A group is a safe prime q = 2r + 1 (r prime) with a generator g of the full
// multiplicative group.  Because q-1 = 2r, g generates the group exactly when
// g² ≠ 1 and g^r ≠ 1 (mod q).
package dh

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Group holds the public parameters shared by both parties.
type Group struct {
	Q *big.Int // safe prime modulus
	G *big.Int // generator of the multiplicative group mod Q
	R *big.Int // the prime (Q-1)/2
}

// PrivateKey is a secret exponent X in [1, q-2] and its public value Y = g^X.
type PrivateKey struct {
	Group *Group
	X     *big.Int
	Y     *big.Int
}

// GenerateGroup generates a bitLength-bit safe prime and picks its smallest
// generator.  Safe prime generation is slow for large sizes; ctx bounds it.
func GenerateGroup(ctx context.Context, random io.Reader, bitLength int) (*Group, error) {
	q, err := field.GenerateSafePrime(ctx, random, bitLength)
	if err != nil {
		return nil, err
	}

	r := new(big.Int).Rsh(q, 1)
	g, err := findGenerator(q, r)
	if err != nil {
		return nil, err
	}
	return &Group{Q: q, G: g, R: r}, nil
}

// NewGroup validates q as a safe prime and g as a generator of the
// multiplicative group mod q.  It fails with ErrInvalidGroup otherwise.
func NewGroup(q, g *big.Int) (*Group, error) {
	if q == nil || g == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidGroup, "group parameters must not be nil")
	}
	if q.Cmp(big.NewInt(5)) < 0 || !field.IsProbablePrime(q) {
		return nil, pkcerr.New(pkcerr.ErrInvalidGroup, fmt.Sprintf("modulus %s is not a prime of at least 5", q))
	}
	r := new(big.Int).Rsh(q, 1)
	if !field.IsProbablePrime(r) {
		return nil, pkcerr.New(pkcerr.ErrInvalidGroup, fmt.Sprintf("modulus %s is not a safe prime", q))
	}
	if !isGenerator(q, r, g) {
		return nil, pkcerr.New(pkcerr.ErrInvalidGroup, fmt.Sprintf("%s does not generate the group mod %s", g, q))
	}
	return &Group{Q: new(big.Int).Set(q), G: new(big.Int).Set(g), R: r}, nil
}

// findGenerator returns the smallest generator of the group mod q = 2r + 1.
// Half of all residues are quadratic non-residues and every non-residue
// other than -1 is a generator, so the search ends quickly.
func findGenerator(q, r *big.Int) (*big.Int, error) {
	limit := new(big.Int).Sub(q, one)
	for g := big.NewInt(2); g.Cmp(limit) < 0; g.Add(g, one) {
		if isGenerator(q, r, g) {
			return new(big.Int).Set(g), nil
		}
	}
	return nil, pkcerr.New(pkcerr.ErrInvalidGroup, fmt.Sprintf("no generator found mod %s", q))
}

// isGenerator reports whether g has order q-1 = 2r.
func isGenerator(q, r, g *big.Int) bool {
	if g.Cmp(two) < 0 || g.Cmp(new(big.Int).Sub(q, one)) >= 0 {
		return false
	}
	g2, err := field.ModPow(g, two, q)
	if err != nil || g2.Cmp(one) == 0 {
		return false
	}
	gr, err := field.ModPow(g, r, q)
	return err == nil && gr.Cmp(one) != 0
}

// GenerateKeyPair draws a private exponent uniformly from [1, q-2] and
// computes the public value g^x mod q.
func GenerateKeyPair(random io.Reader, group *Group) (*PrivateKey, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	x, err := field.RandomScalar(random, new(big.Int).Sub(group.Q, one))
	if err != nil {
		return nil, err
	}
	return NewPrivateKey(group, x)
}

// NewPrivateKey builds a key pair from a known exponent in [1, q-2].
func NewPrivateKey(group *Group, x *big.Int) (*PrivateKey, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	if x == nil || x.Sign() <= 0 || x.Cmp(new(big.Int).Sub(group.Q, one)) >= 0 {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, "private exponent is outside [1, q-2]")
	}
	y, err := field.ModPow(group.G, x, group.Q)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{Group: group, X: new(big.Int).Set(x), Y: y}, nil
}

// SharedSecret computes peer^x mod q.  Peer values outside [2, q-2] are
// rejected with ErrInvalidGroup: 0, 1 and q-1 would force the secret into a
// set of at most two values.
func SharedSecret(group *Group, priv *PrivateKey, peer *big.Int) (*big.Int, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	if priv == nil || priv.X == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, "private key must not be nil")
	}
	if peer == nil || peer.Cmp(two) < 0 || peer.Cmp(new(big.Int).Sub(group.Q, one)) >= 0 {
		return nil, pkcerr.New(pkcerr.ErrInvalidGroup, "peer public value is outside [2, q-2]")
	}
	return field.ModPow(peer, priv.X, group.Q)
}

func checkGroup(group *Group) error {
	if group == nil || group.Q == nil || group.G == nil {
		return pkcerr.New(pkcerr.ErrInvalidGroup, "group must not be nil")
	}
	return nil
}
