package ecdsa

import (
	"errors"
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

func allDomains() []*curve.DomainParams {
	return []*curve.DomainParams{
		curve.P256(), curve.FRP256v1(), curve.Secp256k1(), curve.Toy17(), curve.Toy23(),
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	messages := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("The quick brown fox jumps over the lazy dog"),
		make([]byte, 1024),
	}

	for _, d := range allDomains() {
		priv, err := GenerateKeyPair(nil, d)
		if err != nil {
			t.Fatalf("%s: GenerateKeyPair failed: %v", d.Name, err)
		}

		for _, msg := range messages {
			e := HashMessage(SHA256, msg)
			sig, err := Sign(nil, priv, e)
			if err != nil {
				t.Fatalf("%s: Sign failed: %v", d.Name, err)
			}
			if !inRange(sig.R, d.N) || !inRange(sig.S, d.N) {
				t.Errorf("%s: signature out of range: %s", d.Name, sig)
			}
			if !Verify(&priv.PublicKey, e, sig) {
				t.Errorf("%s: valid signature rejected for %q\n%s", d.Name, msg, spew.Sdump(sig))
			}
		}
	}
}

func TestGenerateKeyPair(t *testing.T) {
	d := curve.Toy23()
	for i := 0; i < 50; i++ {
		priv, err := GenerateKeyPair(nil, d)
		if err != nil {
			t.Fatalf("GenerateKeyPair failed: %v", err)
		}
		if !inRange(priv.D, d.N) {
			t.Fatalf("private scalar %s outside [1, n-1]", priv.D)
		}
		if !curve.ScalarMultiply(d, priv.D, d.G).Equal(priv.Q) {
			t.Fatalf("Q != d·G for d = %s", priv.D)
		}
	}

	if _, err := GenerateKeyPair(nil, nil); !errors.Is(err, pkcerr.ErrInvalidDomain) {
		t.Errorf("expected ErrInvalidDomain for nil domain, got %v", err)
	}
}

func TestSignVerify_P256KnownKey(t *testing.T) {
	d := curve.P256()

	priv, err := NewPrivateKey(d, big.NewInt(1))
	if err != nil {
		t.Fatalf("NewPrivateKey failed: %v", err)
	}
	if !priv.Q.Equal(d.G) {
		t.Fatalf("Q = %s, want G", priv.Q)
	}

	e := big.NewInt(0x13)
	sig, err := Sign(nil, priv, e)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(&priv.PublicKey, e, sig) {
		t.Fatal("signature with d = 1 rejected")
	}
}

func TestSignWithNonce_Toy17(t *testing.T) {
	d := curve.Toy17()
	priv, err := NewPrivateKey(d, big.NewInt(7))
	if err != nil {
		t.Fatalf("NewPrivateKey failed: %v", err)
	}

	// 10·G = (7, 11), so r = 7 and s = 10⁻¹(5 + 7·7) mod 19 = 13.
	sig, err := SignWithNonce(priv, big.NewInt(5), big.NewInt(10))
	if err != nil {
		t.Fatalf("SignWithNonce failed: %v", err)
	}
	if sig.R.Int64() != 7 || sig.S.Int64() != 13 {
		t.Errorf("signature = %s, want (7, 13)", sig)
	}
	if !Verify(&priv.PublicKey, big.NewInt(5), sig) {
		t.Error("known signature rejected")
	}
	if Verify(&priv.PublicKey, big.NewInt(6), sig) {
		t.Error("signature accepted for a different digest")
	}

	// 7·G = (0, 6) gives r = 0.
	if _, err := SignWithNonce(priv, big.NewInt(5), big.NewInt(7)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
		t.Errorf("expected ErrInvalidScalar for r = 0, got %v", err)
	}
	for _, k := range []int64{0, 19, -1} {
		if _, err := SignWithNonce(priv, big.NewInt(5), big.NewInt(k)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
			t.Errorf("k = %d: expected ErrInvalidScalar, got %v", k, err)
		}
	}
}

func TestVerify_BitFlips(t *testing.T) {
	for _, d := range []*curve.DomainParams{curve.P256(), curve.FRP256v1()} {
		priv, err := GenerateKeyPair(nil, d)
		if err != nil {
			t.Fatalf("GenerateKeyPair failed: %v", err)
		}
		e := HashMessage(SHA256, []byte("bit flips"))
		sig, err := Sign(nil, priv, e)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}

		for _, bit := range []int{0, 1, 17, 100, 255} {
			flippedR := new(big.Int).SetBit(sig.R, bit, sig.R.Bit(bit)^1)
			if Verify(&priv.PublicKey, e, &Signature{R: flippedR, S: sig.S}) {
				t.Errorf("%s: flipping bit %d of r still verifies", d.Name, bit)
			}
			flippedS := new(big.Int).SetBit(sig.S, bit, sig.S.Bit(bit)^1)
			if Verify(&priv.PublicKey, e, &Signature{R: sig.R, S: flippedS}) {
				t.Errorf("%s: flipping bit %d of s still verifies", d.Name, bit)
			}
		}
	}
}

func TestVerify_Idempotent(t *testing.T) {
	priv, err := GenerateKeyPair(nil, curve.Secp256k1())
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	e := HashMessage(SHA3_256, []byte("repeat"))
	sig, err := Sign(nil, priv, e)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	r, s := new(big.Int).Set(sig.R), new(big.Int).Set(sig.S)
	for i := 0; i < 5; i++ {
		if !Verify(&priv.PublicKey, e, sig) {
			t.Fatalf("verification %d failed", i)
		}
	}
	if sig.R.Cmp(r) != 0 || sig.S.Cmp(s) != 0 {
		t.Error("Verify mutated the signature")
	}
}

func TestVerify_MalformedInput(t *testing.T) {
	d := curve.P256()
	priv, err := GenerateKeyPair(nil, d)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	pub := &priv.PublicKey
	e := big.NewInt(42)
	sig, err := Sign(nil, priv, e)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	tests := []struct {
		name string
		pub  *PublicKey
		e    *big.Int
		sig  *Signature
	}{
		{"nil public key", nil, e, sig},
		{"identity public key", &PublicKey{Domain: d}, e, sig},
		{"nil digest", pub, nil, sig},
		{"nil signature", pub, e, nil},
		{"nil r", pub, e, &Signature{S: sig.S}},
		{"zero r", pub, e, &Signature{R: big.NewInt(0), S: sig.S}},
		{"zero s", pub, e, &Signature{R: sig.R, S: big.NewInt(0)}},
		{"r = n", pub, e, &Signature{R: d.N, S: sig.S}},
		{"s = n", pub, e, &Signature{R: sig.R, S: d.N}},
		{"negative s", pub, e, &Signature{R: sig.R, S: new(big.Int).Neg(sig.S)}},
		{"r + n", pub, e, &Signature{R: new(big.Int).Add(sig.R, d.N), S: sig.S}},
	}

	for _, test := range tests {
		if Verify(test.pub, test.e, test.sig) {
			t.Errorf("%s: Verify returned true", test.name)
		}
	}
}

func TestSign_InvalidKey(t *testing.T) {
	d := curve.P256()

	if _, err := Sign(nil, nil, big.NewInt(1)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
		t.Errorf("nil key: expected ErrInvalidScalar, got %v", err)
	}

	bad := &PrivateKey{PublicKey: PublicKey{Domain: d, Q: d.G}, D: new(big.Int).Set(d.N)}
	if _, err := Sign(nil, bad, big.NewInt(1)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
		t.Errorf("d = n: expected ErrInvalidScalar, got %v", err)
	}

	priv, _ := GenerateKeyPair(nil, d)
	if _, err := Sign(nil, priv, nil); !errors.Is(err, pkcerr.ErrInvalidScalar) {
		t.Errorf("nil digest: expected ErrInvalidScalar, got %v", err)
	}
}

func TestNewPrivateKey_Range(t *testing.T) {
	d := curve.Toy17()
	for _, v := range []int64{0, -3, 19, 20} {
		if _, err := NewPrivateKey(d, big.NewInt(v)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
			t.Errorf("d = %d: expected ErrInvalidScalar, got %v", v, err)
		}
	}
	if _, err := NewPrivateKey(d, big.NewInt(18)); err != nil {
		t.Errorf("d = n-1 rejected: %v", err)
	}
}

func TestNewPublicKey(t *testing.T) {
	d := curve.Toy23()

	// (5, 4) generates the subgroup of order 7.
	if _, err := NewPublicKey(d, big.NewInt(5), big.NewInt(4)); err != nil {
		t.Errorf("subgroup point rejected: %v", err)
	}
	// (0, 1) has order 28 and lies outside the subgroup.
	if _, err := NewPublicKey(d, big.NewInt(0), big.NewInt(1)); !errors.Is(err, pkcerr.ErrInvalidPoint) {
		t.Errorf("expected ErrInvalidPoint for point outside subgroup, got %v", err)
	}
	if _, err := NewPublicKey(d, big.NewInt(5), big.NewInt(5)); !errors.Is(err, pkcerr.ErrInvalidPoint) {
		t.Errorf("expected ErrInvalidPoint for off-curve point, got %v", err)
	}
}
