package curve

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// Canonical names accepted by ByName.
const (
	NameP256      = "P-256"
	NameFRP256v1  = "FRP256v1"
	NameSecp256k1 = "secp256k1"
	NameToy17     = "toy17"
	NameToy23     = "toy23"
)

var (
	initonce     sync.Once
	p256         *DomainParams
	frp256v1     *DomainParams
	secp256k1Dom *DomainParams
	toy17        *DomainParams
	toy23        *DomainParams
)

func initAll() {
	p256 = mustDomain(NameP256,
		"FFFFFFFF00000001000000000000000000000000FFFFFFFFFFFFFFFFFFFFFFFF",
		"-3",
		"5AC635D8AA3A93E7B3EBBD55769886BC651D06B0CC53B0F63BCE3C3E27D2604B",
		"6B17D1F2E12C4247F8BCE6E563A440F277037D812DEB33A0F4A13945D898C296",
		"4FE342E2FE1A7F9B8EE7EB4A7C0F9E162BCE33576B315ECECBB6406837BF51F5",
		"FFFFFFFF00000000FFFFFFFFFFFFFFFFBCE6FAADA7179E84F3B9CAC2FC632551",
		"1")

	// ANSSI FRP256v1, the French national curve.
	frp256v1 = mustDomain(NameFRP256v1,
		"F1FD178C0B3AD58F10126DE8CE42435B3961ADBCABC8CA6DE8FCF353D86E9C03",
		"-3",
		"EE353FCA5428A9300D4ABA754A44C00FDFEC0C9AE4B1A1803075ED967B7BB73F",
		"B6B3D4C356C139EB31183D4749D423958C27D2DCAF98B70164C97A2DD98F5CFF",
		"6142E0F7C8B204911F9271F0F3ECEF8C2701C307E8E4C9E183115A1554062CFB",
		"F1FD178C0B3AD58F10126DE8CE42435B53DC67E140D2BF941FFDD459C6D655E1",
		"1")

	// secp256k1 is taken from the decred implementation rather than
	// restated here.
	k1 := secp256k1.S256().Params()
	secp256k1Dom = mustBigDomain(NameSecp256k1, k1.P, big.NewInt(0), k1.B,
		k1.Gx, k1.Gy, k1.N, big.NewInt(1))

	// Small curves where every point can be enumerated by hand.
	toy17 = mustDomain(NameToy17, "11", "2", "2", "5", "1", "13", "1")
	toy23 = mustDomain(NameToy23, "17", "1", "1", "5", "4", "7", "4")
}

// P256 returns the NIST P-256 (secp256r1) domain parameters.
func P256() *DomainParams {
	initonce.Do(initAll)
	return p256
}

// FRP256v1 returns the ANSSI FRP256v1 domain parameters.
func FRP256v1() *DomainParams {
	initonce.Do(initAll)
	return frp256v1
}

// Secp256k1 returns the SEC 2 secp256k1 domain parameters.
func Secp256k1() *DomainParams {
	initonce.Do(initAll)
	return secp256k1Dom
}

// Toy17 returns y² = x³ + 2x + 2 over GF(17) with G = (5, 1) of order 19.
func Toy17() *DomainParams {
	initonce.Do(initAll)
	return toy17
}

// Toy23 returns y² = x³ + x + 1 over GF(23) with G = (5, 4) of order 7 and
// cofactor 4.
func Toy23() *DomainParams {
	initonce.Do(initAll)
	return toy23
}

// ByName returns the named domain parameters.  Matching ignores case and
// accepts a few common aliases.
func ByName(name string) (*DomainParams, error) {
	switch strings.ToLower(name) {
	case "p-256", "p256", "secp256r1", "prime256v1":
		return P256(), nil
	case "frp256v1", "anssi", "anssi-frp256v1":
		return FRP256v1(), nil
	case "secp256k1", "k1":
		return Secp256k1(), nil
	case "toy17":
		return Toy17(), nil
	case "toy23":
		return Toy23(), nil
	}
	str := fmt.Sprintf("unknown curve %q", name)
	return nil, pkcerr.New(pkcerr.ErrInvalidDomain, str)
}

// Names lists the canonical names accepted by ByName.
func Names() []string {
	return []string{NameP256, NameFRP256v1, NameSecp256k1, NameToy17, NameToy23}
}

func mustDomain(name, p, a, b, gx, gy, n, h string) *DomainParams {
	return mustBigDomain(name, fromHex(p), fromHex(a), fromHex(b),
		fromHex(gx), fromHex(gy), fromHex(n), fromHex(h))
}

func mustBigDomain(name string, p, a, b, gx, gy, n, h *big.Int) *DomainParams {
	d, err := NewDomainParams(name, p, a, b, gx, gy, n, h)
	if err != nil {
		panic(err)
	}
	return d
}

// fromHex parses a hard-coded hex constant and panics on malformed input.
func fromHex(s string) *big.Int {
	r, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return r
}
