package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/config"
	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
)

var (
	curveFlag = cli.StringFlag{
		Name:  "curve",
		Usage: "named curve: P-256, FRP256v1, secp256k1, toy17 or toy23 (default from config)",
	}

	hashFlag = cli.StringFlag{
		Name:  "hash",
		Usage: "message hash: sha256, sha3-256 or blake2b-256 (default from config)",
	}

	textMessageFlag = cli.StringFlag{
		Name:  "message",
		Usage: "message to sign",
		Value: "hello, world",
	}

	ecdsaCommand = cli.Command{
		Name:   "ecdsa",
		Usage:  "Generate an ECDSA key, sign a message and verify it",
		Flags:  []cli.Flag{curveFlag, hashFlag, textMessageFlag},
		Action: ecdsaDemo,
	}
)

func ecdsaDemo(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}
	domain, err := domainFlag(ctx, conf)
	if err != nil {
		return err
	}
	hasher, err := hasherFlag(ctx, conf)
	if err != nil {
		return err
	}

	priv, err := ecdsa.GenerateKeyPair(nil, domain)
	if err != nil {
		return err
	}
	signer := ecdsa.NewSigner(priv).WithHasher(hasher)

	msg := []byte(ctx.String(textMessageFlag.Name))
	sig, err := signer.SignMessage(msg)
	if err != nil {
		return err
	}

	out.line("ECDSA on %s with %s:", domain.Name, hasher.Name())
	out.value("d", priv.D)
	out.value("Qx", priv.Q.X())
	out.value("Qy", priv.Q.Y())
	out.value("digest", ecdsa.HashMessage(hasher, msg))
	out.value("r", sig.R)
	out.value("s", sig.S)
	out.line("  signature is %s", verdict(signer.VerifyMessage(msg, sig)))

	tampered := append(append([]byte(nil), msg...), '!')
	out.line("  signature over tampered message is %s", verdict(signer.VerifyMessage(tampered, sig)))
	return nil
}

func domainFlag(ctx *cli.Context, conf *config.Config) (*curve.DomainParams, error) {
	name := conf.ECDSA.Curve
	if ctx.IsSet(curveFlag.Name) {
		name = ctx.String(curveFlag.Name)
	}
	d, err := curve.ByName(name)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --curve")
	}
	return d, nil
}

func hasherFlag(ctx *cli.Context, conf *config.Config) (ecdsa.Hasher, error) {
	name := conf.ECDSA.Hash
	if ctx.IsSet(hashFlag.Name) {
		name = ctx.String(hashFlag.Name)
	}
	h, err := ecdsa.HasherByName(name)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --hash")
	}
	return h, nil
}
