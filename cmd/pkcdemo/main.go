// Command pkcdemo walks through textbook RSA, ECDSA and Diffie-Hellman, and
// audits ECDSA signature sets for related nonces.
package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/config"
	"github.com/mahdiidarabi/textbook-pkc/internal/encoding"
	"github.com/mahdiidarabi/textbook-pkc/internal/logging"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "textbook public-key cryptography demos"
	app.HideVersion = true
	app.Flags = config.GlobalFlags
	app.Commands = []cli.Command{
		rsaCommand,
		ecdsaCommand,
		dhCommand,
		keygenCommand,
		inspectCommand,
		verifyBatchCommand,
		recoverCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Before = setupLogging
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Logger.Fatal(err)
	}
}

// setupLogging applies the log settings before any command runs.
func setupLogging(ctx *cli.Context) error {
	conf, err := config.GetConfig(ctx)
	if err != nil {
		return err
	}
	if err := logging.SetLevel(conf.Log.Level); err != nil {
		return err
	}
	if conf.Log.Dir != "" {
		if err := logging.SetFileRotationHooker(conf.Log.Dir, uint(conf.Log.RotationCount)); err != nil {
			return err
		}
	}
	logging.Logger.Debugf("configuration: %+v", *conf)
	return nil
}

// printer writes labelled integers in the configured output format.
type printer struct {
	w      io.Writer
	format encoding.Format
}

func newPrinter(ctx *cli.Context, conf *config.Config) *printer {
	format, err := encoding.ParseFormat(conf.Output.Format)
	if err != nil {
		format = encoding.Hex
	}
	return &printer{w: ctx.App.Writer, format: format}
}

func (p *printer) value(label string, v *big.Int) {
	fmt.Fprintf(p.w, "  %-14s %s\n", label, encoding.Encode(v, p.format))
}

func (p *printer) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// setup loads the configuration for a command action.
func setup(ctx *cli.Context) (*config.Config, *printer, error) {
	conf, err := config.GetConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conf, newPrinter(ctx, conf), nil
}

func verdict(ok bool) string {
	if ok {
		return color.GreenString("valid")
	}
	return color.RedString("INVALID")
}
