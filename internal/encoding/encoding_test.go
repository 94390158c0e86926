package encoding

import (
	"math/big"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		v      int64
		format Format
		want   string
	}{
		{255, Hex, "0xff"},
		{255, Decimal, "255"},
		{0, Hex, "0x0"},
		{0, Decimal, "0"},
		{0, Base58, "1"},
		{57, Base58, "z"},
		{58, Base58, "21"},
	}

	for _, test := range tests {
		got := Encode(big.NewInt(test.v), test.format)
		if got != test.want {
			t.Errorf("Encode(%d, %s) = %q, want %q", test.v, test.format, got, test.want)
		}
	}

	if Encode(nil, Hex) != "<nil>" {
		t.Error("Encode(nil) should not panic")
	}
}

func TestDecode(t *testing.T) {
	v, _ := new(big.Int).SetString("ffffffff00000001000000000000000000000000ffffffffffffffffffffffff", 16)

	for _, f := range []Format{Hex, Decimal, Base58} {
		s := Encode(v, f)
		got, err := Decode(s, f)
		if err != nil {
			t.Errorf("Decode(%q, %s) failed: %v", s, f, err)
			continue
		}
		if got.Cmp(v) != 0 {
			t.Errorf("Decode(%q, %s) = %x, want %x", s, f, got, v)
		}
	}

	bad := map[Format]string{
		Hex:     "0xzz",
		Decimal: "12a",
		Base58:  "0OIl",
	}
	for f, s := range bad {
		if _, err := Decode(s, f); err == nil {
			t.Errorf("Decode(%q, %s) should fail", s, f)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"hex":     Hex,
		"HEX":     Hex,
		"decimal": Decimal,
		"dec":     Decimal,
		"base58":  Base58,
		" b58 ":   Base58,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("octal"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
