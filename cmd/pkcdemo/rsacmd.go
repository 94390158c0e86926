package main

import (
	stderrors "errors"
	"math/big"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/config"
	"github.com/mahdiidarabi/textbook-pkc/internal/logging"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
	"github.com/mahdiidarabi/textbook-pkc/pkg/rsa"
)

// maxKeyAttempts bounds the retries when 65537 divides φ(n).
const maxKeyAttempts = 16

var (
	bitsFlag = cli.IntFlag{
		Name:  "bits",
		Usage: "bit length of each prime (default from config)",
	}

	workedFlag = cli.BoolFlag{
		Name:  "worked",
		Usage: "use the worked example p = 61, q = 53, e = 17",
	}

	integerMessageFlag = cli.StringFlag{
		Name:  "message",
		Usage: "message integer, decimal or 0x-prefixed hex",
		Value: "65",
	}

	rsaCommand = cli.Command{
		Name:        "rsa",
		Usage:       "Generate an RSA key, encrypt, decrypt, sign and verify",
		Description: "Textbook RSA without padding; never use it for real data.",
		Flags:       []cli.Flag{bitsFlag, workedFlag, integerMessageFlag},
		Action:      rsaDemo,
	}
)

func rsaDemo(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}
	m, err := ecdsa.ParseBigInt(ctx.String(integerMessageFlag.Name))
	if err != nil {
		return errors.Wrap(err, "invalid --message")
	}

	var priv *rsa.PrivateKey
	if ctx.Bool(workedFlag.Name) {
		priv, err = rsa.NewKeyFromPrimes(big.NewInt(61), big.NewInt(53), big.NewInt(17))
	} else {
		var bits int
		if bits, err = rsaBits(ctx, conf); err != nil {
			return err
		}
		priv, err = generateRSAKey(bits, conf.Workers)
	}
	if err != nil {
		return err
	}

	out.line("RSA key:")
	out.value("p", priv.P)
	out.value("q", priv.Q)
	out.value("n", priv.N)
	out.value("phi", priv.Phi)
	out.value("e", priv.E)
	out.value("d", priv.D)

	c, err := rsa.Encrypt(&priv.PublicKey, m)
	if err != nil {
		return err
	}
	plain, err := rsa.Decrypt(priv, c)
	if err != nil {
		return err
	}
	sig, err := rsa.Sign(priv, m)
	if err != nil {
		return err
	}

	out.line("Round trip:")
	out.value("message", m)
	out.value("ciphertext", c)
	out.value("decrypted", plain)
	out.value("signature", sig.S)
	out.line("  signature is %s", verdict(rsa.Verify(&priv.PublicKey, m, sig)))
	return nil
}

// rsaBits returns the prime size from --bits or the config.
func rsaBits(ctx *cli.Context, conf *config.Config) (int, error) {
	if !ctx.IsSet(bitsFlag.Name) {
		return conf.RSA.Bits, nil
	}
	bits := ctx.Int(bitsFlag.Name)
	if bits < config.MinRSABits {
		return 0, errors.Errorf("--bits must be at least %d, got %d", config.MinRSABits, bits)
	}
	return bits, nil
}

// generateRSAKey draws fresh primes until e = 65537 is usable. Each prime is
// searched by workers goroutines.
func generateRSAKey(bits, workers int) (*rsa.PrivateKey, error) {
	runCtx, stop := interruptContext()
	defer stop()
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		priv, err := rsa.GenerateKeyPairParallel(runCtx, nil, bits, workers)
		if err == nil {
			return priv, nil
		}
		if !stderrors.Is(err, pkcerr.ErrIncompatibleExponent) {
			return nil, err
		}
		logging.Logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"workers": workers,
		}).Debug("exponent shares a factor with phi, retrying")
	}
	return nil, errors.Errorf("no usable %d-bit RSA key after %d attempts", bits, maxKeyAttempts)
}
