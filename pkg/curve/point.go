package curve

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// Point is a point on a curve: either the identity or an affine (x, y) pair.
// The zero value is the identity.  Coordinates are never exposed by
// reference, so a Point can be copied and shared freely.
type Point struct {
	x, y *big.Int
}

// Identity returns the point at infinity.
func Identity() Point {
	return Point{}
}

// NewPoint returns the affine point (x, y) after checking that both
// coordinates lie in [0, p-1] and satisfy the curve equation of d.  It fails
// with ErrInvalidPoint otherwise.
func NewPoint(d *DomainParams, x, y *big.Int) (Point, error) {
	if x == nil || y == nil {
		return Point{}, pkcerr.New(pkcerr.ErrInvalidPoint, "point coordinates must not be nil")
	}
	if !d.IsOnCurve(x, y) {
		str := fmt.Sprintf("point (%x, %x) is not on curve %s", x, y, d.Name)
		return Point{}, pkcerr.New(pkcerr.ErrInvalidPoint, str)
	}
	return affine(x, y), nil
}

// affine builds a point from coordinates already known to be reduced and on
// the curve.
func affine(x, y *big.Int) Point {
	return Point{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	return p.x == nil
}

// X returns a copy of the affine x coordinate, or nil for the identity.
func (p Point) X() *big.Int {
	if p.IsIdentity() {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the affine y coordinate, or nil for the identity.
func (p Point) Y() *big.Int {
	if p.IsIdentity() {
		return nil
	}
	return new(big.Int).Set(p.y)
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.IsIdentity() || q.IsIdentity() {
		return p.IsIdentity() && q.IsIdentity()
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

// String returns "identity" or "(x, y)" in hex.
func (p Point) String() string {
	if p.IsIdentity() {
		return "identity"
	}
	return fmt.Sprintf("(0x%x, 0x%x)", p.x, p.y)
}
