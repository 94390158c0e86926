package pkcerr

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrInvalidDomain, "ErrInvalidDomain"},
		{ErrInvalidPoint, "ErrInvalidPoint"},
		{ErrInvalidModulus, "ErrInvalidModulus"},
		{ErrNoInverse, "ErrNoInverse"},
		{ErrInvalidBitLength, "ErrInvalidBitLength"},
		{ErrInvalidScalar, "ErrInvalidScalar"},
		{ErrIncompatibleExponent, "ErrIncompatibleExponent"},
		{ErrMessageTooLarge, "ErrMessageTooLarge"},
		{ErrInvalidSignatureRange, "ErrInvalidSignatureRange"},
		{ErrInvalidGroup, "ErrInvalidGroup"},
		{ErrNoRecovery, "ErrNoRecovery"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	tests := []struct {
		in   Error
		want string
	}{{
		Error{Description: "some error"},
		"some error",
	}, {
		New(ErrNoInverse, "no inverse of 6 mod 9"),
		"no inverse of 6 mod 9",
	}}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as
// being a specific error kind via errors.Is and unwrapped via errors.As.
func TestErrorKindIsAs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrNoInverse == ErrNoInverse",
		err:       ErrNoInverse,
		target:    ErrNoInverse,
		wantMatch: true,
		wantAs:    ErrNoInverse,
	}, {
		name:      "Error.ErrNoInverse == ErrNoInverse",
		err:       New(ErrNoInverse, ""),
		target:    ErrNoInverse,
		wantMatch: true,
		wantAs:    ErrNoInverse,
	}, {
		name:      "Error.ErrMessageTooLarge != ErrNoInverse",
		err:       New(ErrMessageTooLarge, ""),
		target:    ErrNoInverse,
		wantMatch: false,
		wantAs:    ErrMessageTooLarge,
	}, {
		name:      "ErrInvalidPoint != io.EOF",
		err:       ErrInvalidPoint,
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrInvalidPoint,
	}}

	for _, test := range tests {
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, want %v",
				test.name, result, test.wantMatch)
			continue
		}

		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, want %v",
				test.name, kind, test.wantAs)
		}
	}
}
