package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/keyfile"
	"github.com/mahdiidarabi/textbook-pkc/internal/logging"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
)

var (
	schemeFlag = cli.StringFlag{
		Name:  "scheme",
		Usage: "key scheme: ecdsa or rsa",
		Value: keyfile.SchemeECDSA,
	}

	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "path of the key document to write",
	}

	passphraseFlag = cli.StringFlag{
		Name:  "passphrase",
		Usage: "passphrase protecting the private key",
	}

	encryptFlag = cli.BoolFlag{
		Name:  "encrypt",
		Usage: "prompt for a passphrase and encrypt the private key",
	}

	lightKDFFlag = cli.BoolFlag{
		Name:  "light-kdf",
		Usage: "use cheap scrypt parameters when encrypting",
	}

	keygenCommand = cli.Command{
		Name:   "keygen",
		Usage:  "Generate a key pair and store it as a JSON document",
		Flags:  []cli.Flag{schemeFlag, curveFlag, bitsFlag, outFlag, passphraseFlag, encryptFlag, lightKDFFlag},
		Action: keygen,
	}
)

func keygen(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}
	path := ctx.String(outFlag.Name)
	if path == "" {
		return errors.New("--out is required")
	}

	var doc *keyfile.Document
	switch scheme := ctx.String(schemeFlag.Name); scheme {
	case keyfile.SchemeECDSA:
		domain, err := domainFlag(ctx, conf)
		if err != nil {
			return err
		}
		priv, err := ecdsa.GenerateKeyPair(nil, domain)
		if err != nil {
			return err
		}
		if doc, err = keyfile.NewECDSA(priv); err != nil {
			return err
		}
	case keyfile.SchemeRSA:
		bits, err := rsaBits(ctx, conf)
		if err != nil {
			return err
		}
		priv, err := generateRSAKey(bits, conf.Workers)
		if err != nil {
			return err
		}
		if doc, err = keyfile.NewRSA(priv); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown scheme %q", scheme)
	}

	passphrase := ctx.String(passphraseFlag.Name)
	if passphrase == "" && ctx.Bool(encryptFlag.Name) {
		if passphrase, err = promptPassphrase("Passphrase: ", true); err != nil {
			return err
		}
	}
	if passphrase != "" {
		params := keyfile.StandardScrypt
		if ctx.Bool(lightKDFFlag.Name) {
			params = keyfile.LightScrypt
		}
		if err := doc.Encrypt([]byte(passphrase), params); err != nil {
			return err
		}
	}

	if err := keyfile.Write(path, doc); err != nil {
		return err
	}
	logging.Logger.WithFields(logrus.Fields{
		"id":        doc.ID,
		"scheme":    doc.Scheme,
		"encrypted": doc.Encrypted(),
	}).Debug("key document written")
	out.line("Key %s written to %s", doc.ID, path)
	return nil
}
