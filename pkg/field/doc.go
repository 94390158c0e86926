// Package field implements the prime-field arithmetic the curve and scheme
// packages are built on: modular exponentiation, modular inversion, primality
// testing and prime generation over moduli of arbitrary size.
//
// All functions take their modulus explicitly and never mutate their
// arguments.  Randomness is always drawn from a caller-supplied io.Reader; a
// nil reader selects crypto/rand.Reader.
//
// # Quick Start
//
//	c, _ := field.ModPow(big.NewInt(65), big.NewInt(17), big.NewInt(3233))
//	d, _ := field.ModInverse(big.NewInt(17), big.NewInt(3120))
//	p, _ := field.GeneratePrime(nil, 1024)
//	k, _ := field.RandomScalar(nil, n) // uniform in [1, n-1]
package field
