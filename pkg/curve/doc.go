// Package curve implements group arithmetic on short-Weierstrass elliptic
// curves y² = x³ + a·x + b over a prime field, in affine coordinates.
//
// A DomainParams value carries everything an operation needs (field prime,
// coefficients, base point, order and cofactor) and is passed explicitly to
// every function; there is no ambient curve.  Points are immutable values:
// either the identity (the point at infinity, which is also the zero value)
// or an affine pair that has been checked against the curve equation.
//
// # Quick Start
//
//	d := curve.P256()
//	q := curve.ScalarBaseMultiply(d, big.NewInt(42))
//	r := curve.Add(d, q, curve.Negate(d, q)) // identity
//
// The arithmetic is textbook and variable-time.  It is meant for study and
// for cross-checking, not for protecting secrets.
package curve
