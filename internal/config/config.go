// Package config loads the settings shared by the demo commands from a TOML
// file and the command line.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/mahdiidarabi/textbook-pkc/internal/encoding"
	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/ecdsa"
)

// Config is the full configuration.
type Config struct {
	// Workers sizes the worker pools; zero means one per CPU.
	Workers int `toml:"workers"`

	Log    LogConfig    `toml:"log"`
	RSA    RSAConfig    `toml:"rsa"`
	ECDSA  ECDSAConfig  `toml:"ecdsa"`
	DH     DHConfig     `toml:"dh"`
	Output OutputConfig `toml:"output"`
}

// LogConfig sets the log level and the optional rotated log directory.
type LogConfig struct {
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RotationCount int    `toml:"rotation_count"`
}

// RSAConfig sets the size of each RSA prime.
type RSAConfig struct {
	Bits int `toml:"bits"`
}

// ECDSAConfig selects the default curve and message hash.
type ECDSAConfig struct {
	Curve string `toml:"curve"`
	Hash  string `toml:"hash"`
}

// DHConfig sets the size of the safe prime modulus.
type DHConfig struct {
	Bits int `toml:"bits"`
}

// OutputConfig selects how integers are printed.
type OutputConfig struct {
	Format string `toml:"format"`
}

// MinRSABits is the smallest prime size commands accept for RSA keys.
const MinRSABits = 16

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() *Config {
	return &Config{
		Workers: 0,
		Log: LogConfig{
			Level:         "info",
			RotationCount: 7,
		},
		RSA:    RSAConfig{Bits: 1024},
		ECDSA:  ECDSAConfig{Curve: curve.NameP256, Hash: "sha256"},
		DH:     DHConfig{Bits: 256},
		Output: OutputConfig{Format: string(encoding.Hex)},
	}
}

// LoadConfigFromFile reads path over the defaults.  Keys missing from the
// file keep their default values.
func LoadConfigFromFile(path string) (*Config, error) {
	config := GetDefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, errors.Wrapf(err, "failed to load config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return config, nil
}

// SaveConfigToFile writes config to path as TOML.
func SaveConfigToFile(path string, config *Config) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create config %s", path)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

// Validate checks every value a command will rely on.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.RSA.Bits < MinRSABits {
		return errors.Errorf("rsa.bits must be at least %d, got %d", MinRSABits, c.RSA.Bits)
	}
	if c.DH.Bits < 3 {
		return errors.Errorf("dh.bits must be at least 3, got %d", c.DH.Bits)
	}
	if _, err := curve.ByName(c.ECDSA.Curve); err != nil {
		return errors.Wrap(err, "ecdsa.curve")
	}
	if _, err := ecdsa.HasherByName(c.ECDSA.Hash); err != nil {
		return errors.Wrap(err, "ecdsa.hash")
	}
	if _, err := encoding.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, "output.format")
	}
	if c.Log.RotationCount < 0 {
		return errors.Errorf("log.rotation_count must not be negative, got %d", c.Log.RotationCount)
	}
	return nil
}
