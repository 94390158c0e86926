// Package rsa implements textbook RSA: key generation, raw encryption and
// decryption, and raw signatures over integer digests.
//
// No padding is applied.  Textbook RSA is deterministic and malleable, so
// encryption leaks equality of plaintexts and signatures can be forged by
// multiplying existing ones.  The package exists to show the arithmetic and
// must not protect real data; use crypto/rsa with OAEP or PSS for that.
//
// # Quick Start
//
//	priv, err := rsa.GenerateKeyPair(nil, 1024)
//	if errors.Is(err, pkcerr.ErrIncompatibleExponent) {
//	    // 65537 divides φ(n); generate again
//	}
//
//	c, _ := rsa.Encrypt(&priv.PublicKey, m)
//	m2, _ := rsa.Decrypt(priv, c)
package rsa
