package config

import (
	"github.com/urfave/cli"
)

var (
	ConfigFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML config file",
	}

	LogLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "log level: debug, info, warn or error",
	}

	LogDirFlag = cli.StringFlag{
		Name:  "log-dir",
		Usage: "also write rotated log files to this directory",
	}

	FormatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "integer output format: hex, decimal or base58",
	}

	WorkersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "worker goroutines for parallel commands (0 = one per CPU)",
	}
)

// GlobalFlags lists the flags every command accepts.
var GlobalFlags = []cli.Flag{
	ConfigFileFlag,
	LogLevelFlag,
	LogDirFlag,
	FormatFlag,
	WorkersFlag,
}

// GetConfig loads the file named by --config, or the defaults, and applies
// the global flags on top.
func GetConfig(ctx *cli.Context) (*Config, error) {
	config := GetDefaultConfig()
	if path := ctx.GlobalString(ConfigFileFlag.Name); path != "" {
		var err error
		if config, err = LoadConfigFromFile(path); err != nil {
			return nil, err
		}
	}

	if ctx.GlobalIsSet(LogLevelFlag.Name) {
		config.Log.Level = ctx.GlobalString(LogLevelFlag.Name)
	}
	if ctx.GlobalIsSet(LogDirFlag.Name) {
		config.Log.Dir = ctx.GlobalString(LogDirFlag.Name)
	}
	if ctx.GlobalIsSet(FormatFlag.Name) {
		config.Output.Format = ctx.GlobalString(FormatFlag.Name)
	}
	if ctx.GlobalIsSet(WorkersFlag.Name) {
		config.Workers = ctx.GlobalInt(WorkersFlag.Name)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
