package field

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// ModPow computes base^exponent mod modulus with left-to-right binary
// exponentiation (square-and-multiply).
//
// The base is reduced into [0, modulus-1] first.  A zero exponent yields 1
// (or 0 when the modulus is 1).  A negative exponent raises the modular
// inverse of base, so it fails with ErrNoInverse when base is not invertible.
// A modulus that is nil, zero or negative fails with ErrInvalidModulus.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	if err := checkModulus(modulus); err != nil {
		return nil, err
	}
	if modulus.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	b := new(big.Int).Mod(base, modulus)
	e := new(big.Int).Set(exponent)
	if e.Sign() < 0 {
		inv, err := ModInverse(b, modulus)
		if err != nil {
			return nil, err
		}
		b = inv
		e.Neg(e)
	}

	result := big.NewInt(1)
	for i := e.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result)
		result.Mod(result, modulus)
		if e.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
	}
	return result, nil
}

// ModInverse returns the x in [0, modulus-1] with value*x ≡ 1 (mod modulus),
// computed with the extended Euclidean algorithm.
//
// It fails with ErrNoInverse when gcd(value, modulus) != 1 and with
// ErrInvalidModulus when the modulus is not positive.
func ModInverse(value, modulus *big.Int) (*big.Int, error) {
	if err := checkModulus(modulus); err != nil {
		return nil, err
	}

	oldR := new(big.Int).Mod(value, modulus)
	r := new(big.Int).Set(modulus)
	oldS := big.NewInt(1)
	s := big.NewInt(0)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		// (oldR, r) = (r, oldR - q*r)
		tmp.Mul(q, r)
		tmp.Sub(oldR, tmp)
		oldR, r = r, new(big.Int).Set(tmp)

		// (oldS, s) = (s, oldS - q*s)
		tmp.Mul(q, s)
		tmp.Sub(oldS, tmp)
		oldS, s = s, new(big.Int).Set(tmp)
	}

	if oldR.Cmp(one) != 0 {
		str := fmt.Sprintf("%s has no inverse modulo %s (gcd %s)", value,
			modulus, oldR)
		return nil, pkcerr.New(pkcerr.ErrNoInverse, str)
	}
	return oldS.Mod(oldS, modulus), nil
}

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	return new(big.Int).GCD(nil, nil, x, y)
}

func checkModulus(modulus *big.Int) error {
	if modulus == nil || modulus.Sign() <= 0 {
		str := fmt.Sprintf("modulus must be positive, got %v", modulus)
		return pkcerr.New(pkcerr.ErrInvalidModulus, str)
	}
	return nil
}
