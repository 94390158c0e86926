package dh

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

func TestKnownExchange(t *testing.T) {
	group, err := NewGroup(big.NewInt(23), big.NewInt(5))
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}

	alice, err := NewPrivateKey(group, big.NewInt(4))
	if err != nil {
		t.Fatalf("NewPrivateKey failed: %v", err)
	}
	bob, err := NewPrivateKey(group, big.NewInt(3))
	if err != nil {
		t.Fatalf("NewPrivateKey failed: %v", err)
	}
	if alice.Y.Int64() != 4 || bob.Y.Int64() != 10 {
		t.Fatalf("public values %s, %s; want 4, 10", alice.Y, bob.Y)
	}

	sa, err := SharedSecret(group, alice, bob.Y)
	if err != nil {
		t.Fatalf("SharedSecret failed: %v", err)
	}
	sb, err := SharedSecret(group, bob, alice.Y)
	if err != nil {
		t.Fatalf("SharedSecret failed: %v", err)
	}
	if sa.Int64() != 18 || sb.Int64() != 18 {
		t.Errorf("secrets %s, %s; want 18", sa, sb)
	}
}

func TestGenerateGroup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	group, err := GenerateGroup(ctx, nil, 64)
	if err != nil {
		t.Fatalf("GenerateGroup failed: %v", err)
	}
	if group.Q.BitLen() != 64 {
		t.Errorf("q has %d bits, want 64", group.Q.BitLen())
	}
	if _, err := NewGroup(group.Q, group.G); err != nil {
		t.Errorf("generated group does not validate: %v", err)
	}

	alice, err := GenerateKeyPair(nil, group)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	bob, err := GenerateKeyPair(nil, group)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	sa, err := SharedSecret(group, alice, bob.Y)
	if err != nil {
		t.Fatalf("SharedSecret failed: %v", err)
	}
	sb, err := SharedSecret(group, bob, alice.Y)
	if err != nil {
		t.Fatalf("SharedSecret failed: %v", err)
	}
	if sa.Cmp(sb) != 0 {
		t.Errorf("shared secrets differ: %x vs %x", sa, sb)
	}
}

func TestFindGenerator(t *testing.T) {
	tests := []struct {
		q, want int64
	}{
		{23, 5},
		{47, 5},
		{59, 2},
		{107, 2},
	}

	for _, test := range tests {
		q := big.NewInt(test.q)
		g, err := findGenerator(q, new(big.Int).Rsh(q, 1))
		if err != nil {
			t.Errorf("findGenerator(%d) failed: %v", test.q, err)
			continue
		}
		if g.Int64() != test.want {
			t.Errorf("findGenerator(%d) = %s, want %d", test.q, g, test.want)
		}
	}
}

func TestNewGroup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q, g int64
	}{
		{"composite modulus", 21, 2},
		{"not a safe prime", 29, 2},
		{"quadratic residue", 23, 2},
		{"g = 1", 23, 1},
		{"g = q-1", 23, 22},
		{"g = q", 23, 23},
	}

	for _, test := range tests {
		_, err := NewGroup(big.NewInt(test.q), big.NewInt(test.g))
		if !errors.Is(err, pkcerr.ErrInvalidGroup) {
			t.Errorf("%s: expected ErrInvalidGroup, got %v", test.name, err)
		}
	}
}

func TestSharedSecret_RejectsWeakPeer(t *testing.T) {
	group, err := NewGroup(big.NewInt(23), big.NewInt(5))
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	priv, err := GenerateKeyPair(nil, group)
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	for _, peer := range []int64{-1, 0, 1, 22, 23, 100} {
		if _, err := SharedSecret(group, priv, big.NewInt(peer)); !errors.Is(err, pkcerr.ErrInvalidGroup) {
			t.Errorf("peer %d: expected ErrInvalidGroup, got %v", peer, err)
		}
	}
}

func TestNewPrivateKey_Range(t *testing.T) {
	group, err := NewGroup(big.NewInt(23), big.NewInt(5))
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	for _, x := range []int64{0, -1, 22, 23} {
		if _, err := NewPrivateKey(group, big.NewInt(x)); !errors.Is(err, pkcerr.ErrInvalidScalar) {
			t.Errorf("x = %d: expected ErrInvalidScalar, got %v", x, err)
		}
	}
	for i := 0; i < 50; i++ {
		priv, err := GenerateKeyPair(nil, group)
		if err != nil {
			t.Fatalf("GenerateKeyPair failed: %v", err)
		}
		if priv.X.Sign() <= 0 || priv.X.Int64() > 21 {
			t.Fatalf("private exponent %s outside [1, 21]", priv.X)
		}
	}
}
