package curve

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// Add returns p + q using the chord-and-tangent law.
//
// Adding the identity returns the other operand, p + (-p) is the identity, and
// p + p is computed with the tangent slope (3x² + a) / (2y).
func Add(d *DomainParams, p, q Point) Point {
	if p.IsIdentity() {
		return q
	}
	if q.IsIdentity() {
		return p
	}

	if p.x.Cmp(q.x) == 0 {
		// Same x: either q = p (double) or q = -p (vertical line).
		sum := new(big.Int).Add(p.y, q.y)
		if d.reduce(sum).Sign() == 0 {
			return Identity()
		}
		return Double(d, p)
	}

	// slope = (y2 - y1) / (x2 - x1)
	num := new(big.Int).Sub(q.y, p.y)
	den := d.reduce(new(big.Int).Sub(q.x, p.x))
	slope := num.Mul(num, d.inverse(den))
	d.reduce(slope)

	return d.chord(slope, p, q.x)
}

// Double returns 2p.
func Double(d *DomainParams, p Point) Point {
	if p.IsIdentity() || p.y.Sign() == 0 {
		return Identity()
	}

	// slope = (3x² + a) / (2y)
	num := new(big.Int).Mul(p.x, p.x)
	num.Mul(num, three)
	num.Add(num, d.A)
	den := d.reduce(new(big.Int).Mul(p.y, two))
	slope := num.Mul(num, d.inverse(den))
	d.reduce(slope)

	return d.chord(slope, p, p.x)
}

// chord finishes an addition given the slope through p and a second point
// with x coordinate x2:
//
//	x3 = slope² - x1 - x2
//	y3 = slope·(x1 - x3) - y1
func (d *DomainParams) chord(slope *big.Int, p Point, x2 *big.Int) Point {
	x3 := new(big.Int).Mul(slope, slope)
	x3.Sub(x3, p.x)
	x3.Sub(x3, x2)
	d.reduce(x3)

	y3 := new(big.Int).Sub(p.x, x3)
	y3.Mul(y3, slope)
	y3.Sub(y3, p.y)
	d.reduce(y3)

	return Point{x: x3, y: y3}
}

// Negate returns -p, the reflection (x, -y).
func Negate(d *DomainParams, p Point) Point {
	if p.IsIdentity() {
		return p
	}
	y := new(big.Int).Neg(p.y)
	return Point{x: new(big.Int).Set(p.x), y: d.reduce(y)}
}

// ScalarMultiply returns k·p with the left-to-right double-and-add method.
// A zero k yields the identity; a negative k multiplies -p by |k|.
func ScalarMultiply(d *DomainParams, k *big.Int, p Point) Point {
	if k.Sign() == 0 || p.IsIdentity() {
		return Identity()
	}

	scalar := k
	if k.Sign() < 0 {
		p = Negate(d, p)
		scalar = new(big.Int).Neg(k)
	}

	result := Identity()
	for i := scalar.BitLen() - 1; i >= 0; i-- {
		result = Double(d, result)
		if scalar.Bit(i) == 1 {
			result = Add(d, result, p)
		}
	}
	return result
}

// PointOrder returns the smallest positive m with m·p = identity.
//
// The order of any point divides #E = h·n, and n is prime, so the candidates
// are m and m·n for each divisor m of the cofactor.  On prime-order curves this
// costs a single scalar multiplication and returns n for every point but the
// identity.
func PointOrder(d *DomainParams, p Point) (*big.Int, error) {
	if p.IsIdentity() {
		return big.NewInt(1), nil
	}
	if !d.IsOnCurve(p.x, p.y) {
		return nil, pkcerr.New(pkcerr.ErrInvalidPoint,
			fmt.Sprintf("point %s is not on curve %s", p, d.Name))
	}
	if d.H.Cmp(one) == 0 {
		return new(big.Int).Set(d.N), nil
	}
	if !d.H.IsInt64() || d.H.Int64() > maxCofactor {
		str := fmt.Sprintf("curve %s: cofactor %s too large to factor", d.Name, d.H)
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, str)
	}

	for _, m := range orderCandidates(d.H.Int64(), d.N) {
		if ScalarMultiply(d, m, p).IsIdentity() {
			return m, nil
		}
	}

	// Unreachable for validated parameters, since (h·n)·p is always the
	// identity.
	str := fmt.Sprintf("curve %s: no order found for %s", d.Name, p)
	return nil, pkcerr.New(pkcerr.ErrInvalidDomain, str)
}

// orderCandidates returns the divisors of h·n in ascending order, given that
// n is prime.
func orderCandidates(h int64, n *big.Int) []*big.Int {
	var divisors []int64
	for m := int64(1); m*m <= h; m++ {
		if h%m == 0 {
			divisors = append(divisors, m)
			if m*m != h {
				divisors = append(divisors, h/m)
			}
		}
	}

	seen := make(map[string]bool)
	candidates := make([]*big.Int, 0, 2*len(divisors))
	for _, m := range divisors {
		for _, c := range []*big.Int{big.NewInt(m), new(big.Int).Mul(big.NewInt(m), n)} {
			key := c.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Cmp(candidates[j]) < 0
	})
	return candidates
}
