package main

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/encoding"
	"github.com/mahdiidarabi/textbook-pkc/internal/keyfile"
)

var (
	showPrivateFlag = cli.BoolFlag{
		Name:  "private",
		Usage: "also print the private values, decrypting them if needed",
	}

	inspectCommand = cli.Command{
		Name:      "inspect",
		Usage:     "Print the values stored in a key document",
		ArgsUsage: "<key document>",
		Flags:     []cli.Flag{showPrivateFlag, passphraseFlag},
		Action:    inspect,
	}
)

func inspect(ctx *cli.Context) error {
	_, out, err := setup(ctx)
	if err != nil {
		return err
	}
	if len(ctx.Args()) != 1 {
		return errors.New("expected exactly one key document")
	}

	doc, err := keyfile.Read(ctx.Args().First())
	if err != nil {
		return err
	}
	// Decoding the key checks that its values are consistent.
	switch doc.Scheme {
	case keyfile.SchemeECDSA:
		_, err = doc.ECDSAPublicKey()
	case keyfile.SchemeRSA:
		_, err = doc.RSAPublicKey()
	default:
		err = errors.Errorf("unknown scheme %q", doc.Scheme)
	}
	if err != nil {
		return err
	}

	out.line("Key %s (%s %s)", doc.ID, doc.Scheme, doc.Curve)
	if err := printFields(out, doc.Public); err != nil {
		return err
	}
	if !ctx.Bool(showPrivateFlag.Name) {
		if doc.Encrypted() {
			out.line("  private values are encrypted")
		}
		return nil
	}

	if doc.Encrypted() {
		passphrase := ctx.String(passphraseFlag.Name)
		if passphrase == "" {
			if passphrase, err = promptPassphrase("Passphrase: ", false); err != nil {
				return err
			}
		}
		if err := doc.Decrypt([]byte(passphrase)); err != nil {
			return err
		}
	}
	switch doc.Scheme {
	case keyfile.SchemeECDSA:
		_, err = doc.ECDSAPrivateKey()
	case keyfile.SchemeRSA:
		_, err = doc.RSAPrivateKey()
	}
	if err != nil {
		return err
	}
	return printFields(out, doc.Private)
}

// printFields prints stored hex values in the configured format, sorted by
// name.
func printFields(out *printer, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := encoding.Decode(values[name], encoding.Hex)
		if err != nil {
			return err
		}
		out.value(name, v)
	}
	return nil
}
