package keyfile

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"
)

const (
	cipherName = "aes-128-ctr"
	kdfName    = "scrypt"
	macHash    = "sha3256"

	// scryptDKLen is the derived key length: 16 bytes of AES key followed
	// by 16 bytes of MAC key.
	scryptDKLen = 32
	saltLen     = 32
)

// ErrDecrypt is returned when the MAC does not match, which almost always
// means a wrong passphrase.
var ErrDecrypt = errors.New("could not decrypt key with given passphrase")

// ScryptParams are the scrypt cost parameters.
type ScryptParams struct {
	N int // general work factor
	R int // block size
	P int // parallelization
}

var (
	// StandardScrypt uses about 128MB of memory and one second of CPU.
	StandardScrypt = ScryptParams{N: 1 << 17, R: 8, P: 1}

	// LightScrypt uses about 4MB of memory and is meant for tests and
	// throwaway keys.
	LightScrypt = ScryptParams{N: 1 << 12, R: 8, P: 6}
)

type cipherparamsJSON struct {
	IV string `json:"iv"`
}

type kdfparamsJSON struct {
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
}

type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherText   string           `json:"ciphertext"`
	CipherParams cipherparamsJSON `json:"cipherparams"`
	KDF          string           `json:"kdf"`
	KDFParams    kdfparamsJSON    `json:"kdfparams"`
	MAC          string           `json:"mac"`
	MACHash      string           `json:"machash"`
}

// Encrypted reports whether the private values are encrypted.
func (doc *Document) Encrypted() bool {
	return doc.Crypto != nil
}

// Encrypt replaces the plain private values with their encryption under
// passphrase.
func (doc *Document) Encrypt(passphrase []byte, params ScryptParams) error {
	if doc.Private == nil {
		return ErrNoPrivateKey
	}
	plain, err := json.Marshal(doc.Private)
	if err != nil {
		return errors.Wrap(err, "failed to encode private values")
	}

	salt := make([]byte, saltLen)
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return errors.Wrap(err, "failed to read salt")
	}
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return errors.Wrap(err, "failed to read iv")
	}

	derivedKey, err := scrypt.Key(passphrase, salt, params.N, params.R, params.P, scryptDKLen)
	if err != nil {
		return errors.Wrap(err, "scrypt failed")
	}
	cipherText, err := aesCTRXOR(derivedKey[:16], plain, iv)
	if err != nil {
		return err
	}

	doc.Crypto = &cryptoJSON{
		Cipher:       cipherName,
		CipherText:   hex.EncodeToString(cipherText),
		CipherParams: cipherparamsJSON{IV: hex.EncodeToString(iv)},
		KDF:          kdfName,
		KDFParams: kdfparamsJSON{
			N:     params.N,
			R:     params.R,
			P:     params.P,
			DKLen: scryptDKLen,
			Salt:  hex.EncodeToString(salt),
		},
		MAC:     hex.EncodeToString(computeMAC(derivedKey[16:32], cipherText, iv)),
		MACHash: macHash,
	}
	doc.Private = nil
	return nil
}

// Decrypt restores the plain private values.  It fails with ErrDecrypt for a
// wrong passphrase.
func (doc *Document) Decrypt(passphrase []byte) error {
	crypto := doc.Crypto
	if crypto == nil {
		return nil
	}
	if crypto.Cipher != cipherName {
		return errors.Errorf("cipher %q not supported", crypto.Cipher)
	}
	if crypto.KDF != kdfName {
		return errors.Errorf("kdf %q not supported", crypto.KDF)
	}
	if crypto.KDFParams.DKLen != scryptDKLen {
		return errors.Errorf("derived key length %d not supported", crypto.KDFParams.DKLen)
	}

	mac, err := hex.DecodeString(crypto.MAC)
	if err != nil {
		return errors.Wrap(err, "invalid mac")
	}
	iv, err := hex.DecodeString(crypto.CipherParams.IV)
	if err != nil {
		return errors.Wrap(err, "invalid iv")
	}
	cipherText, err := hex.DecodeString(crypto.CipherText)
	if err != nil {
		return errors.Wrap(err, "invalid ciphertext")
	}
	salt, err := hex.DecodeString(crypto.KDFParams.Salt)
	if err != nil {
		return errors.Wrap(err, "invalid salt")
	}

	p := crypto.KDFParams
	derivedKey, err := scrypt.Key(passphrase, salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return errors.Wrap(err, "scrypt failed")
	}

	if subtle.ConstantTimeCompare(computeMAC(derivedKey[16:32], cipherText, iv), mac) != 1 {
		return ErrDecrypt
	}

	plain, err := aesCTRXOR(derivedKey[:16], cipherText, iv)
	if err != nil {
		return err
	}
	private := make(map[string]string)
	if err := json.Unmarshal(plain, &private); err != nil {
		return errors.Wrap(err, "failed to decode private values")
	}

	doc.Private = private
	doc.Crypto = nil
	return nil
}

func computeMAC(key, cipherText, iv []byte) []byte {
	h := sha3.New256()
	h.Write(key)
	h.Write(cipherText)
	h.Write(iv)
	h.Write([]byte(cipherName))
	return h.Sum(nil)
}

func aesCTRXOR(key, inText, iv []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}
	stream := cipher.NewCTR(aesBlock, iv)
	outText := make([]byte, len(inText))
	stream.XORKeyStream(outText, inText)
	return outText, nil
}
