package rsa

import (
	"context"
	"crypto/sha256"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/mahdiidarabi/textbook-pkc/pkg/field"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

func workedExample(t *testing.T) *PrivateKey {
	t.Helper()
	priv, err := NewKeyFromPrimes(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	if err != nil {
		t.Fatalf("NewKeyFromPrimes failed: %v", err)
	}
	return priv
}

func TestWorkedExample(t *testing.T) {
	priv := workedExample(t)

	if priv.N.Int64() != 3233 {
		t.Errorf("n = %s, want 3233", priv.N)
	}
	if priv.Phi.Int64() != 3120 {
		t.Errorf("φ = %s, want 3120", priv.Phi)
	}
	if priv.D.Int64() != 2753 {
		t.Errorf("d = %s, want 2753", priv.D)
	}

	c, err := Encrypt(&priv.PublicKey, big.NewInt(65))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if c.Int64() != 2790 {
		t.Errorf("Encrypt(65) = %s, want 2790", c)
	}

	m, err := Decrypt(priv, big.NewInt(2790))
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if m.Int64() != 65 {
		t.Errorf("Decrypt(2790) = %s, want 65", m)
	}
}

func TestRoundTrip_SmallKey(t *testing.T) {
	priv := workedExample(t)

	// With n = 61·53 every m in [0, n-1] round trips, coprime or not.
	for m := int64(0); m < 3233; m += 7 {
		c, err := Encrypt(&priv.PublicKey, big.NewInt(m))
		if err != nil {
			t.Fatalf("Encrypt(%d) failed: %v", m, err)
		}
		got, err := Decrypt(priv, c)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got.Int64() != m {
			t.Errorf("round trip of %d gave %s", m, got)
		}
	}
}

func TestGenerateKeyPair(t *testing.T) {
	var priv *PrivateKey
	var err error
	for attempt := 0; attempt < 10; attempt++ {
		priv, err = GenerateKeyPair(nil, 512)
		if !errors.Is(err, pkcerr.ErrIncompatibleExponent) {
			break
		}
	}
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	if priv.P.Cmp(priv.Q) == 0 {
		t.Fatal("p and q are equal")
	}
	if priv.P.BitLen() != 512 || priv.Q.BitLen() != 512 {
		t.Errorf("prime sizes %d and %d, want 512", priv.P.BitLen(), priv.Q.BitLen())
	}
	if priv.E.Int64() != DefaultExponent {
		t.Errorf("e = %s, want %d", priv.E, DefaultExponent)
	}

	ed := new(big.Int).Mul(priv.E, priv.D)
	ed.Mod(ed, priv.Phi)
	if ed.Cmp(big.NewInt(1)) != 0 {
		t.Error("e·d != 1 mod φ")
	}

	for i := 0; i < 5; i++ {
		m, err := field.RandomScalar(nil, priv.N)
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		if field.GCD(m, priv.N).Cmp(big.NewInt(1)) != 0 {
			continue
		}
		c, err := Encrypt(&priv.PublicKey, m)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		got, err := Decrypt(priv, c)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got.Cmp(m) != 0 {
			t.Errorf("round trip failed for %x", m)
		}
	}
}

func TestGenerateKeyPair_InvalidBitLength(t *testing.T) {
	// Two bits hold a single prime (3), so no distinct q exists.
	for _, bits := range []int{-1, 0, 1, 2} {
		done := make(chan error, 1)
		go func(bits int) {
			_, err := GenerateKeyPair(nil, bits)
			done <- err
		}(bits)
		select {
		case err := <-done:
			if !errors.Is(err, pkcerr.ErrInvalidBitLength) {
				t.Errorf("bits %d: expected ErrInvalidBitLength, got %v", bits, err)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("bits %d: GenerateKeyPair did not return", bits)
		}

		if _, err := GenerateKeyPairParallel(context.Background(), nil, bits, 2); !errors.Is(err, pkcerr.ErrInvalidBitLength) {
			t.Errorf("bits %d: parallel expected ErrInvalidBitLength, got %v", bits, err)
		}
	}
}

func TestGenerateKeyPair_SmallestPrimes(t *testing.T) {
	// 5 and 7 are the only 3-bit primes.
	priv, err := GenerateKeyPair(nil, MinBitLength)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if priv.N.Int64() != 35 {
		t.Errorf("n = %s, want 35", priv.N)
	}
}

func TestGenerateKeyPairParallel(t *testing.T) {
	var priv *PrivateKey
	var err error
	for attempt := 0; attempt < 10; attempt++ {
		priv, err = GenerateKeyPairParallel(context.Background(), nil, 128, 4)
		if !errors.Is(err, pkcerr.ErrIncompatibleExponent) {
			break
		}
	}
	if err != nil {
		t.Fatalf("GenerateKeyPairParallel failed: %v", err)
	}
	if priv.P.Cmp(priv.Q) == 0 {
		t.Fatal("p and q are equal")
	}
	if priv.P.BitLen() != 128 || priv.Q.BitLen() != 128 {
		t.Errorf("prime sizes %d and %d, want 128", priv.P.BitLen(), priv.Q.BitLen())
	}

	m := big.NewInt(42)
	c, err := Encrypt(&priv.PublicKey, m)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err := Decrypt(priv, c)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got.Cmp(m) != 0 {
		t.Errorf("round trip gave %s, want 42", got)
	}
}

func TestGenerateKeyPairParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GenerateKeyPairParallel(ctx, nil, 512, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewKeyFromPrimes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		p, q, e int64
		kind    pkcerr.ErrorKind
	}{
		{"equal primes", 61, 61, 17, pkcerr.ErrInvalidDomain},
		{"composite p", 62, 53, 17, pkcerr.ErrInvalidDomain},
		{"exponent shares factor", 61, 53, 3, pkcerr.ErrIncompatibleExponent},
		{"exponent one", 61, 53, 1, pkcerr.ErrIncompatibleExponent},
		{"even exponent", 61, 53, 4, pkcerr.ErrIncompatibleExponent},
	}

	for _, test := range tests {
		_, err := NewKeyFromPrimes(big.NewInt(test.p), big.NewInt(test.q), big.NewInt(test.e))
		if !errors.Is(err, test.kind) {
			t.Errorf("%s: expected %v, got %v", test.name, test.kind, err)
		}
	}
}

func TestEncrypt_OutOfRange(t *testing.T) {
	priv := workedExample(t)

	for _, m := range []*big.Int{big.NewInt(3233), big.NewInt(5000), big.NewInt(-1), nil} {
		if _, err := Encrypt(&priv.PublicKey, m); !errors.Is(err, pkcerr.ErrMessageTooLarge) {
			t.Errorf("Encrypt(%v): expected ErrMessageTooLarge, got %v", m, err)
		}
		if _, err := Decrypt(priv, m); !errors.Is(err, pkcerr.ErrMessageTooLarge) {
			t.Errorf("Decrypt(%v): expected ErrMessageTooLarge, got %v", m, err)
		}
	}
}

func TestSignVerify(t *testing.T) {
	priv, err := NewKeyFromPrimes(
		mustPrime(t, 512), mustPrime(t, 512), big.NewInt(DefaultExponent))
	if err != nil {
		t.Skipf("primes incompatible with 65537: %v", err)
	}

	h := sha256.Sum256([]byte("textbook rsa signature"))
	digest := new(big.Int).SetBytes(h[:])

	sig, err := Sign(priv, digest)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(&priv.PublicKey, digest, sig) {
		t.Error("valid signature rejected")
	}
	if !Verify(&priv.PublicKey, digest, sig) {
		t.Error("second verification disagreed")
	}

	tampered := new(big.Int).Add(digest, big.NewInt(1))
	if Verify(&priv.PublicKey, tampered, sig) {
		t.Error("signature accepted for a different digest")
	}
	if Verify(&priv.PublicKey, digest, &Signature{S: new(big.Int).Add(sig.S, big.NewInt(1))}) {
		t.Error("modified signature accepted")
	}
	if Verify(&priv.PublicKey, digest, nil) || Verify(nil, digest, sig) {
		t.Error("nil input accepted")
	}
}

func TestSign_DigestTooLarge(t *testing.T) {
	priv := workedExample(t)

	// A SHA-256 digest does not fit under a 12-bit modulus.
	h := sha256.Sum256([]byte("too big"))
	if _, err := Sign(priv, new(big.Int).SetBytes(h[:])); !errors.Is(err, pkcerr.ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}

	sig, err := Sign(priv, big.NewInt(1234))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(&priv.PublicKey, big.NewInt(1234), sig) {
		t.Error("small digest signature rejected")
	}
}

func mustPrime(t *testing.T, bits int) *big.Int {
	t.Helper()
	p, err := field.GeneratePrime(nil, bits)
	if err != nil {
		t.Fatalf("GeneratePrime failed: %v", err)
	}
	return p
}
