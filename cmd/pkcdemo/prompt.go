package main

import (
	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

// promptPassphrase reads a passphrase from the terminal without echoing it.
// With confirm set the passphrase must be typed twice.
func promptPassphrase(prompt string, confirm bool) (string, error) {
	if !liner.TerminalSupported() {
		return "", errors.New("terminal does not support passphrase prompts, use --passphrase")
	}
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	passphrase, err := state.PasswordPrompt(prompt)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase")
	}
	if passphrase == "" {
		return "", errors.New("empty passphrase")
	}
	if confirm {
		again, err := state.PasswordPrompt("Repeat passphrase: ")
		if err != nil {
			return "", errors.Wrap(err, "failed to read passphrase confirmation")
		}
		if again != passphrase {
			return "", errors.New("passphrases do not match")
		}
	}
	return passphrase, nil
}
