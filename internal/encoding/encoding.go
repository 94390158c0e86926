// Package encoding renders the integers printed by the demo tools.
package encoding

import (
	"math/big"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// Format selects how integers are written.
type Format string

// Supported formats.
const (
	Hex     Format = "hex"
	Decimal Format = "decimal"
	Base58  Format = "base58"
)

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Hex, Decimal, Base58:
		return f, nil
	case "dec":
		return Decimal, nil
	case "b58":
		return Base58, nil
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// Encode writes the non-negative integer v in format f.  Hex output carries
// a 0x prefix; base58 encodes the minimal big-endian bytes, with zero written
// as a single zero byte.
func Encode(v *big.Int, f Format) string {
	if v == nil {
		return "<nil>"
	}
	switch f {
	case Decimal:
		return v.Text(10)
	case Base58:
		b := v.Bytes()
		if len(b) == 0 {
			b = []byte{0}
		}
		return base58.Encode(b)
	default:
		return "0x" + v.Text(16)
	}
}

// Decode parses s as written by Encode in format f.
func Decode(s string, f Format) (*big.Int, error) {
	s = strings.TrimSpace(s)
	switch f {
	case Base58:
		b, err := base58.Decode(s)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid base58 integer %q", s)
		}
		return new(big.Int).SetBytes(b), nil
	case Decimal:
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Errorf("invalid decimal integer %q", s)
		}
		return v, nil
	default:
		trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		v, ok := new(big.Int).SetString(trimmed, 16)
		if !ok {
			return nil, errors.Errorf("invalid hex integer %q", s)
		}
		return v, nil
	}
}
