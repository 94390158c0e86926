// Package keyfile stores key pairs as JSON documents, optionally encrypting
// the private values under a passphrase.
//
// The private part of a document is either a plain "private" object or an
// encrypted "crypto" object: scrypt derives a 32-byte key from the
// passphrase, the first half keys AES-128-CTR and the second half keys a
// SHA3-256 MAC over the ciphertext.
package keyfile

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"
	"os"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/mahdiidarabi/textbook-pkc/internal/encoding"
	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
	"github.com/mahdiidarabi/textbook-pkc/pkg/rsa"
)

// Key schemes.
const (
	SchemeECDSA = "ecdsa"
	SchemeRSA   = "rsa"
)

const currentVersion = 1

var (
	// ErrLocked is returned when private values are requested from an
	// encrypted document that has not been decrypted.
	ErrLocked = errors.New("key document is encrypted")

	// ErrNoPrivateKey is returned when a document only holds a public key.
	ErrNoPrivateKey = errors.New("key document has no private key")
)

// Document is the JSON form of a key.  Integers are hex strings.
type Document struct {
	ID      string            `json:"id"`
	Version int               `json:"version"`
	Scheme  string            `json:"scheme"`
	Curve   string            `json:"curve,omitempty"`
	Public  map[string]string `json:"public"`
	Private map[string]string `json:"private,omitempty"`
	Crypto  *cryptoJSON       `json:"crypto,omitempty"`
}

// newID returns a random version 4 UUID.
func newID() (string, error) {
	b := make([]byte, uuid.Size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", errors.Wrap(err, "failed to read key id")
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate key id")
	}
	id.SetVersion(uuid.V4)
	id.SetVariant(uuid.VariantRFC4122)
	return id.String(), nil
}

func newDocument(scheme string) (*Document, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Document{
		ID:      id,
		Version: currentVersion,
		Scheme:  scheme,
		Public:  make(map[string]string),
	}, nil
}

// NewECDSA creates a document holding an ECDSA key pair.
func NewECDSA(priv *ecdsa.PrivateKey) (*Document, error) {
	doc, err := NewECDSAPublic(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	doc.Private = map[string]string{"d": hexInt(priv.D)}
	return doc, nil
}

// NewECDSAPublic creates a document holding only an ECDSA public key.
func NewECDSAPublic(pub *ecdsa.PublicKey) (*Document, error) {
	if pub == nil || pub.Domain == nil || pub.Q.IsIdentity() {
		return nil, errors.New("incomplete ECDSA public key")
	}
	doc, err := newDocument(SchemeECDSA)
	if err != nil {
		return nil, err
	}
	doc.Curve = pub.Domain.Name
	doc.Public["x"] = hexInt(pub.Q.X())
	doc.Public["y"] = hexInt(pub.Q.Y())
	return doc, nil
}

// NewRSA creates a document holding an RSA key pair.
func NewRSA(priv *rsa.PrivateKey) (*Document, error) {
	doc, err := newDocument(SchemeRSA)
	if err != nil {
		return nil, err
	}
	doc.Public["n"] = hexInt(priv.N)
	doc.Public["e"] = hexInt(priv.E)
	doc.Private = map[string]string{
		"d": hexInt(priv.D),
		"p": hexInt(priv.P),
		"q": hexInt(priv.Q),
	}
	return doc, nil
}

// ECDSAPublicKey decodes and validates the public key.
func (doc *Document) ECDSAPublicKey() (*ecdsa.PublicKey, error) {
	if doc.Scheme != SchemeECDSA {
		return nil, errors.Errorf("document %s holds a %s key", doc.ID, doc.Scheme)
	}
	d, err := curve.ByName(doc.Curve)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", doc.ID)
	}
	x, err := doc.field(doc.Public, "x")
	if err != nil {
		return nil, err
	}
	y, err := doc.field(doc.Public, "y")
	if err != nil {
		return nil, err
	}
	pub, err := ecdsa.NewPublicKey(d, x, y)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", doc.ID)
	}
	return pub, nil
}

// ECDSAPrivateKey decodes the key pair and checks that the private scalar
// matches the stored public key.
func (doc *Document) ECDSAPrivateKey() (*ecdsa.PrivateKey, error) {
	pub, err := doc.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	if err := doc.checkPrivate(); err != nil {
		return nil, err
	}
	secret, err := doc.field(doc.Private, "d")
	if err != nil {
		return nil, err
	}

	priv, err := ecdsa.NewPrivateKey(pub.Domain, secret)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", doc.ID)
	}
	if !priv.Public().Equal(pub) {
		return nil, errors.Errorf("document %s: private key does not match public key", doc.ID)
	}
	return priv, nil
}

// RSAPublicKey decodes the public key.
func (doc *Document) RSAPublicKey() (*rsa.PublicKey, error) {
	if doc.Scheme != SchemeRSA {
		return nil, errors.Errorf("document %s holds a %s key", doc.ID, doc.Scheme)
	}
	n, err := doc.field(doc.Public, "n")
	if err != nil {
		return nil, err
	}
	e, err := doc.field(doc.Public, "e")
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}

// RSAPrivateKey rebuilds the key from its primes and checks it against the
// stored values.
func (doc *Document) RSAPrivateKey() (*rsa.PrivateKey, error) {
	pub, err := doc.RSAPublicKey()
	if err != nil {
		return nil, err
	}
	if err := doc.checkPrivate(); err != nil {
		return nil, err
	}

	values := make(map[string]*big.Int, 3)
	for _, name := range []string{"d", "p", "q"} {
		if values[name], err = doc.field(doc.Private, name); err != nil {
			return nil, err
		}
	}

	priv, err := rsa.NewKeyFromPrimes(values["p"], values["q"], pub.E)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s", doc.ID)
	}
	if priv.N.Cmp(pub.N) != 0 || priv.D.Cmp(values["d"]) != 0 {
		return nil, errors.Errorf("document %s: private values do not match public key", doc.ID)
	}
	return priv, nil
}

func (doc *Document) checkPrivate() error {
	if doc.Private != nil {
		return nil
	}
	if doc.Crypto != nil {
		return ErrLocked
	}
	return ErrNoPrivateKey
}

func (doc *Document) field(values map[string]string, name string) (*big.Int, error) {
	s, ok := values[name]
	if !ok {
		return nil, errors.Errorf("document %s: missing %q", doc.ID, name)
	}
	v, err := encoding.Decode(s, encoding.Hex)
	if err != nil {
		return nil, errors.Wrapf(err, "document %s: field %q", doc.ID, name)
	}
	return v, nil
}

// Write stores doc at path with owner-only permissions.  It holds an
// exclusive lock on path + ".lock" while writing and fails if another
// process holds it.
func Write(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode key document")
	}

	lockPath := path + ".lock"
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return errors.Wrapf(err, "failed to lock %s", lockPath)
	}
	if !locked {
		return errors.Errorf("key document %s is being written by another process", path)
	}
	defer func() {
		fileLock.Unlock()
		os.Remove(lockPath)
	}()

	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return errors.Wrapf(err, "failed to write key document %s", path)
	}
	return nil
}

// Read loads a document from path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key document %s", path)
	}
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode key document %s", path)
	}
	if doc.Version != currentVersion {
		return nil, errors.Errorf("key document %s has unsupported version %d", path, doc.Version)
	}
	return doc, nil
}

func hexInt(v *big.Int) string {
	return encoding.Encode(v, encoding.Hex)
}
