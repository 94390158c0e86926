package ecdsa

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
)

// testdataDir returns the absolute path of the repository testdata directory.
func testdataDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

type keyInfo struct {
	Curve      string `json:"curve"`
	PrivateKey string `json:"private_key"`
	PublicX    string `json:"public_key_x"`
	PublicY    string `json:"public_key_y"`
}

// loadTestKey reads testdata/key_info.json, the key behind every signature
// fixture.
func loadTestKey(t *testing.T) *PrivateKey {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(testdataDir(), "key_info.json"))
	if err != nil {
		t.Fatalf("Failed to read key info: %v", err)
	}
	var info keyInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("Failed to decode key info: %v", err)
	}

	d, err := curve.ByName(info.Curve)
	if err != nil {
		t.Fatalf("Unknown fixture curve: %v", err)
	}
	secret := mustParse(t, info.PrivateKey)
	priv, err := NewPrivateKey(d, secret)
	if err != nil {
		t.Fatalf("Invalid fixture key: %v", err)
	}

	pub, err := NewPublicKey(d, mustParse(t, info.PublicX), mustParse(t, info.PublicY))
	if err != nil {
		t.Fatalf("Invalid fixture public key: %v", err)
	}
	if !pub.Equal(&priv.PublicKey) {
		t.Fatal("Fixture public key does not match private key")
	}
	return priv
}

// loadTestSignatures parses a JSON fixture from testdata.
func loadTestSignatures(t *testing.T, filename string) []*SignedDigest {
	t.Helper()

	parser := &JSONParser{}
	sigs, err := parser.ParseSignatures(filepath.Join(testdataDir(), filename))
	if err != nil {
		t.Fatalf("Failed to load %s: %v", filename, err)
	}
	return sigs
}

func mustParse(t *testing.T, s string) *big.Int {
	t.Helper()
	v, err := ParseBigInt(s)
	if err != nil {
		t.Fatalf("ParseBigInt(%q) failed: %v", s, err)
	}
	return v
}

func hexInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in test: " + s)
	}
	return v
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}
