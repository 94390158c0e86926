package curve

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// maxCofactor bounds the cofactors PointOrder is willing to factor.
const maxCofactor = 1 << 20

// DomainParams contains the parameters of a curve y² = x³ + ax + b over GF(P)
// together with a base point G of prime order N.
//
// Values returned by NewDomainParams and the named-curve constructors are
// validated and must be treated as read-only.
type DomainParams struct {
	Name    string   // the canonical name of the curve
	P       *big.Int // the order of the underlying field
	A       *big.Int // the linear coefficient, reduced into [0, P-1]
	B       *big.Int // the constant coefficient, reduced into [0, P-1]
	G       Point    // the base point
	N       *big.Int // the order of the base point
	H       *big.Int // the cofactor, #E = H*N
	BitSize int      // the size of the underlying field
}

// NewDomainParams validates and returns a set of domain parameters.
//
// It fails with ErrInvalidDomain when p or n is not prime, the curve is
// singular (4a³ + 27b² ≡ 0), h*n lies outside the Hasse interval, or n·G is not
// the identity, and with ErrInvalidPoint when G is not on the curve.  A nil h
// means a cofactor of 1.
func NewDomainParams(name string, p, a, b, gx, gy, n, h *big.Int) (*DomainParams, error) {
	if p == nil || a == nil || b == nil || n == nil {
		return nil, domainError(name, "missing parameter")
	}
	if p.Cmp(three) <= 0 || !field.IsProbablePrime(p) {
		return nil, domainError(name, fmt.Sprintf("field modulus %x is not a prime above 3", p))
	}
	if !field.IsProbablePrime(n) {
		return nil, domainError(name, fmt.Sprintf("order %x is not prime", n))
	}
	if h == nil {
		h = one
	}
	if h.Sign() <= 0 {
		return nil, domainError(name, fmt.Sprintf("cofactor %s is not positive", h))
	}

	d := &DomainParams{
		Name:    name,
		P:       new(big.Int).Set(p),
		A:       new(big.Int).Mod(a, p),
		B:       new(big.Int).Mod(b, p),
		N:       new(big.Int).Set(n),
		H:       new(big.Int).Set(h),
		BitSize: p.BitLen(),
	}

	if d.discriminant().Sign() == 0 {
		return nil, domainError(name, "curve is singular")
	}
	if !d.withinHasseBound() {
		return nil, domainError(name, fmt.Sprintf("group order %s*%x violates the Hasse bound", h, n))
	}

	g, err := NewPoint(d, gx, gy)
	if err != nil {
		return nil, err
	}
	d.G = g

	if !ScalarMultiply(d, d.N, d.G).IsIdentity() {
		return nil, domainError(name, "base point does not have the stated order")
	}
	return d, nil
}

// IsOnCurve reports whether (x, y) is a reduced affine point satisfying
// y² = x³ + ax + b (mod p).
func (d *DomainParams) IsOnCurve(x, y *big.Int) bool {
	if x.Sign() < 0 || x.Cmp(d.P) >= 0 || y.Sign() < 0 || y.Cmp(d.P) >= 0 {
		return false
	}

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, d.P)
	return d.polynomial(x).Cmp(y2) == 0
}

// polynomial returns x³ + ax + b mod p.
func (d *DomainParams) polynomial(x *big.Int) *big.Int {
	x3 := new(big.Int).Mul(x, x)
	x3.Add(x3, d.A) // x² + a
	x3.Mul(x3, x)   // x³ + ax
	x3.Add(x3, d.B) // x³ + ax + b
	return x3.Mod(x3, d.P)
}

// discriminant returns 4a³ + 27b² mod p.
func (d *DomainParams) discriminant() *big.Int {
	a3 := new(big.Int).Exp(d.A, three, d.P)
	a3.Mul(a3, four)
	b2 := new(big.Int).Mul(d.B, d.B)
	b2.Mul(b2, big.NewInt(27))
	a3.Add(a3, b2)
	return a3.Mod(a3, d.P)
}

// withinHasseBound reports whether |h*n - (p+1)| <= 2*sqrt(p).
func (d *DomainParams) withinHasseBound() bool {
	order := new(big.Int).Mul(d.H, d.N)
	diff := new(big.Int).Add(d.P, one)
	diff.Sub(order, diff)
	diff.Abs(diff)

	// Compare diff² <= 4p to stay in integers.
	diff.Mul(diff, diff)
	bound := new(big.Int).Mul(d.P, four)
	return diff.Cmp(bound) <= 0
}

// reduce returns v mod p.
func (d *DomainParams) reduce(v *big.Int) *big.Int {
	return v.Mod(v, d.P)
}

// inverse returns v⁻¹ mod p.  Every nonzero element of a validated field is
// invertible, so a failure means the parameters were modified after
// validation.
func (d *DomainParams) inverse(v *big.Int) *big.Int {
	inv, err := field.ModInverse(v, d.P)
	if err != nil {
		panic(fmt.Sprintf("curve %s: %v", d.Name, err))
	}
	return inv
}

// cacheKey identifies the parameters for the fixed-base table cache.
func (d *DomainParams) cacheKey() string {
	return fmt.Sprintf("%s|%x|%x|%x|%x|%x|%x", d.Name, d.P, d.A, d.B, d.G.x, d.G.y, d.N)
}

func domainError(name, desc string) error {
	return pkcerr.New(pkcerr.ErrInvalidDomain, fmt.Sprintf("curve %s: %s", name, desc))
}
