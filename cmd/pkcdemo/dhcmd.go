package main

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/logging"
	"github.com/mahdiidarabi/textbook-pkc/pkg/dh"
)

var (
	dhBitsFlag = cli.IntFlag{
		Name:  "bits",
		Usage: "bit length of the safe prime (default from config)",
	}

	dhWorkedFlag = cli.BoolFlag{
		Name:  "worked",
		Usage: "use the worked example q = 23, g = 5",
	}

	dhCommand = cli.Command{
		Name:   "dh",
		Usage:  "Agree on a shared secret with Diffie-Hellman",
		Flags:  []cli.Flag{dhBitsFlag, dhWorkedFlag},
		Action: dhDemo,
	}
)

func dhDemo(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}

	var group *dh.Group
	if ctx.Bool(dhWorkedFlag.Name) {
		group, err = dh.NewGroup(big.NewInt(23), big.NewInt(5))
	} else {
		bits := conf.DH.Bits
		if ctx.IsSet(dhBitsFlag.Name) {
			bits = ctx.Int(dhBitsFlag.Name)
		}
		logging.Logger.WithField("bits", bits).Info("generating safe prime")
		group, err = dh.GenerateGroup(context.Background(), nil, bits)
	}
	if err != nil {
		return err
	}

	alice, err := dh.GenerateKeyPair(nil, group)
	if err != nil {
		return err
	}
	bob, err := dh.GenerateKeyPair(nil, group)
	if err != nil {
		return err
	}
	aliceSecret, err := dh.SharedSecret(group, alice, bob.Y)
	if err != nil {
		return err
	}
	bobSecret, err := dh.SharedSecret(group, bob, alice.Y)
	if err != nil {
		return err
	}

	out.line("Group:")
	out.value("q", group.Q)
	out.value("g", group.G)
	out.line("Alice:")
	out.value("x", alice.X)
	out.value("g^x", alice.Y)
	out.line("Bob:")
	out.value("y", bob.X)
	out.value("g^y", bob.Y)
	out.line("Shared secret:")
	out.value("alice", aliceSecret)
	out.value("bob", bobSecret)

	if aliceSecret.Cmp(bobSecret) != 0 {
		return errors.New("shared secrets differ")
	}
	return nil
}
