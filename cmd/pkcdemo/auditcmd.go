package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/mahdiidarabi/textbook-pkc/internal/config"
	"github.com/mahdiidarabi/textbook-pkc/internal/keyfile"
	"github.com/mahdiidarabi/textbook-pkc/internal/logging"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
)

var (
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "ECDSA key document holding the signer's public key",
	}

	signaturesFlag = cli.StringFlag{
		Name:  "signatures",
		Usage: "signature file, JSON or CSV",
	}

	inputFormatFlag = cli.StringFlag{
		Name:  "input-format",
		Usage: "signature file format: json or csv (default from extension)",
	}

	aRangeFlag = cli.StringFlag{
		Name:  "a-range",
		Usage: "inclusive range of a tried exhaustively (min,max)",
		Value: "-16,16",
	}

	bRangeFlag = cli.StringFlag{
		Name:  "b-range",
		Usage: "inclusive range of b tried exhaustively (min,max)",
		Value: "-256,256",
	}

	maxPairsFlag = cli.IntFlag{
		Name:  "max-pairs",
		Usage: "signature pairs searched exhaustively",
		Value: 100,
	}

	knownAFlag = cli.Int64Flag{
		Name:  "known-a",
		Usage: "known relation k2 = a·k1 + b, applied to the first two signatures",
	}

	knownBFlag = cli.Int64Flag{
		Name:  "known-b",
		Usage: "offset b of the known relation",
	}

	recoveredOutFlag = cli.StringFlag{
		Name:  "out",
		Usage: "write the recovered key pair to this key document",
	}

	verifyBatchCommand = cli.Command{
		Name:   "verify-batch",
		Usage:  "Verify a file of ECDSA signatures in parallel",
		Flags:  []cli.Flag{keyFlag, signaturesFlag, inputFormatFlag, hashFlag},
		Action: verifyBatch,
	}

	recoverCommand = cli.Command{
		Name:  "recover",
		Usage: "Recover an ECDSA private key from signatures with related nonces",
		Description: "Looks for two signatures whose nonces satisfy k2 = a·k1 + b: " +
			"repeated r values first, then common generator flaws, then every (a, b) in range.",
		Flags: []cli.Flag{keyFlag, signaturesFlag, inputFormatFlag, hashFlag,
			aRangeFlag, bRangeFlag, maxPairsFlag, knownAFlag, knownBFlag, recoveredOutFlag},
		Action: recoverKey,
	}
)

func verifyBatch(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}
	pub, sigs, err := loadAuditInput(ctx, conf)
	if err != nil {
		return err
	}

	items := make([]ecdsa.BatchItem, len(sigs))
	for i, sd := range sigs {
		items[i] = ecdsa.BatchItem{Digest: sd.Z, Signature: sd.Signature()}
	}

	runCtx, stop := interruptContext()
	defer stop()
	results, err := ecdsa.VerifyBatch(runCtx, pub, items, conf.Workers)
	if err != nil {
		return err
	}
	valid := 0
	for i, ok := range results {
		if ok {
			valid++
		}
		out.line("  #%d %s", i, verdict(ok))
	}
	logging.Logger.WithFields(logrus.Fields{
		"valid":   valid,
		"invalid": len(results) - valid,
	}).Info("batch verified")
	out.line("%d of %d signatures valid", valid, len(results))
	return nil
}

func recoverKey(ctx *cli.Context) error {
	conf, out, err := setup(ctx)
	if err != nil {
		return err
	}
	pub, sigs, err := loadAuditInput(ctx, conf)
	if err != nil {
		return err
	}

	var result *ecdsa.RecoveryResult
	if ctx.IsSet(knownAFlag.Name) || ctx.IsSet(knownBFlag.Name) {
		result, err = recoverKnown(pub, sigs, ctx.Int64(knownAFlag.Name), ctx.Int64(knownBFlag.Name))
	} else {
		result, err = searchRelations(ctx, conf, pub, sigs)
	}
	if err != nil {
		return err
	}

	out.line("Recovered private key from signatures %d and %d:", result.SignaturePair[0], result.SignaturePair[1])
	out.value("d", result.PrivateKey.D)
	out.value("a", result.Relationship.A)
	out.value("b", result.Relationship.B)
	out.line("  pattern %s after %d candidate relations", result.Pattern, result.Tested)

	if path := ctx.String(recoveredOutFlag.Name); path != "" {
		doc, err := keyfile.NewECDSA(result.PrivateKey)
		if err != nil {
			return err
		}
		if err := keyfile.Write(path, doc); err != nil {
			return err
		}
		out.line("Key %s written to %s", doc.ID, path)
	}
	return nil
}

func recoverKnown(pub *ecdsa.PublicKey, sigs []*ecdsa.SignedDigest, a, b int64) (*ecdsa.RecoveryResult, error) {
	if len(sigs) < 2 {
		return nil, errors.New("need at least two signatures")
	}
	rel := ecdsa.AffineRelationship{A: big.NewInt(a), B: big.NewInt(b)}
	secret, err := ecdsa.RecoverPrivateKey(pub.Domain, sigs[0], sigs[1], rel.A, rel.B)
	if err != nil {
		return nil, err
	}
	if !ecdsa.VerifyRecoveredKey(pub, secret) {
		return nil, errors.Errorf("relation k2 = %d·k1 + %d does not yield the signer's key", a, b)
	}
	priv, err := ecdsa.NewPrivateKey(pub.Domain, secret)
	if err != nil {
		return nil, err
	}
	return &ecdsa.RecoveryResult{
		PrivateKey:    priv,
		Relationship:  rel,
		SignaturePair: [2]int{0, 1},
		Pattern:       "known",
		Tested:        1,
	}, nil
}

func searchRelations(ctx *cli.Context, conf *config.Config, pub *ecdsa.PublicKey, sigs []*ecdsa.SignedDigest) (*ecdsa.RecoveryResult, error) {
	cfg := ecdsa.DefaultSearchConfig()
	var err error
	if cfg.ARange, err = parseRange(ctx.String(aRangeFlag.Name)); err != nil {
		return nil, errors.Wrap(err, "invalid --a-range")
	}
	if cfg.BRange, err = parseRange(ctx.String(bRangeFlag.Name)); err != nil {
		return nil, errors.Wrap(err, "invalid --b-range")
	}
	cfg.MaxPairs = ctx.Int(maxPairsFlag.Name)
	cfg.Workers = conf.Workers
	cfg.Progress = func(tested int64) {
		logging.Logger.WithField("tested", tested).Debug("searching nonce relations")
	}

	logging.Logger.WithFields(logrus.Fields{
		"signatures": len(sigs),
		"a-range":    cfg.ARange,
		"b-range":    cfg.BRange,
		"max-pairs":  cfg.MaxPairs,
	}).Info("searching for related nonces")

	runCtx, stop := interruptContext()
	defer stop()
	result, err := ecdsa.SearchAffineNonces(runCtx, pub, sigs, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "no private key recovered")
	}
	return result, nil
}

// loadAuditInput reads the public key document and the signature file.
func loadAuditInput(ctx *cli.Context, conf *config.Config) (*ecdsa.PublicKey, []*ecdsa.SignedDigest, error) {
	keyPath := ctx.String(keyFlag.Name)
	sigPath := ctx.String(signaturesFlag.Name)
	if keyPath == "" || sigPath == "" {
		return nil, nil, errors.New("--key and --signatures are required")
	}

	doc, err := keyfile.Read(keyPath)
	if err != nil {
		return nil, nil, err
	}
	pub, err := doc.ECDSAPublicKey()
	if err != nil {
		return nil, nil, err
	}

	hasher, err := hasherFlag(ctx, conf)
	if err != nil {
		return nil, nil, err
	}

	format := strings.ToLower(ctx.String(inputFormatFlag.Name))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(sigPath)), ".")
	}
	var parser ecdsa.SignatureParser
	switch format {
	case "json":
		parser = &ecdsa.JSONParser{Hasher: hasher}
	case "csv":
		parser = &ecdsa.CSVParser{Hasher: hasher}
	default:
		return nil, nil, errors.Errorf("unknown signature format %q", format)
	}

	sigs, err := parser.ParseSignatures(sigPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse %s", sigPath)
	}
	logging.Logger.WithFields(logrus.Fields{
		"file":  sigPath,
		"count": len(sigs),
		"curve": pub.Domain.Name,
	}).Debug("signatures loaded")
	return pub, sigs, nil
}

// interruptContext is cancelled on the first interrupt so long searches stop
// cleanly.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func parseRange(s string) ([2]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]int{}, errors.Errorf("invalid range format: %s", s)
	}

	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return [2]int{}, errors.Wrapf(err, "invalid range start %q", parts[0])
	}
	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return [2]int{}, errors.Wrapf(err, "invalid range end %q", parts[1])
	}
	if min > max {
		return [2]int{}, errors.Errorf("range start %d is above end %d", min, max)
	}
	return [2]int{min, max}, nil
}
