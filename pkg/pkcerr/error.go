// Package pkcerr defines the error kinds shared by the arithmetic and scheme
// packages.
//
// Every failure returned by a public operation is an Error whose Err field is
// one of the ErrorKind constants below, so callers can match on the kind with
// errors.Is while still getting a human-readable description:
//
//	if errors.Is(err, pkcerr.ErrNoInverse) {
//	    // regenerate parameters
//	}
package pkcerr

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidDomain is returned when domain parameters are malformed: a
	// non-prime modulus or order, a singular curve, or a base point that does
	// not generate a subgroup of the stated order.
	ErrInvalidDomain = ErrorKind("ErrInvalidDomain")

	// ErrInvalidPoint is returned when coordinates do not satisfy the curve
	// equation.
	ErrInvalidPoint = ErrorKind("ErrInvalidPoint")

	// ErrInvalidModulus is returned when a modulus is zero or negative.
	ErrInvalidModulus = ErrorKind("ErrInvalidModulus")

	// ErrNoInverse is returned when a modular inverse is requested for a
	// value that shares a factor with the modulus.
	ErrNoInverse = ErrorKind("ErrNoInverse")

	// ErrInvalidBitLength is returned when a prime of fewer than two bits is
	// requested.
	ErrInvalidBitLength = ErrorKind("ErrInvalidBitLength")

	// ErrInvalidScalar is returned when a scalar bound or private scalar is
	// out of range.
	ErrInvalidScalar = ErrorKind("ErrInvalidScalar")

	// ErrIncompatibleExponent is returned when the RSA public exponent is not
	// coprime with the totient.  The caller must generate new primes.
	ErrIncompatibleExponent = ErrorKind("ErrIncompatibleExponent")

	// ErrMessageTooLarge is returned when a plaintext, ciphertext or digest is
	// negative or not smaller than the modulus.
	ErrMessageTooLarge = ErrorKind("ErrMessageTooLarge")

	// ErrInvalidSignatureRange describes a signature component outside
	// [1, n-1].  Verification reports it as an invalid signature rather than
	// returning it.
	ErrInvalidSignatureRange = ErrorKind("ErrInvalidSignatureRange")

	// ErrInvalidGroup is returned when Diffie-Hellman group parameters or a
	// peer public value are unusable.
	ErrInvalidGroup = ErrorKind("ErrInvalidGroup")

	// ErrNoRecovery is returned when a private key cannot be derived from a
	// pair of signatures.
	ErrNoRecovery = ErrorKind("ErrNoRecovery")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the arithmetic or scheme packages.  It
// has full support for errors.Is and errors.As, so the caller can ascertain
// the specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New creates an Error given a kind and a description.
func New(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
