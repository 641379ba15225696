// Package player hands a player URL off to an external program.
// All invocations use exec.Command with explicit argument slices; nothing
// goes through a shell.
package player

import (
	"fmt"
	"os/exec"
)

// Player is the interface for handoff targets.
type Player interface {
	// Open hands url to the program. title is used where the program
	// supports naming the window.
	Open(url, title string) error

	// Name returns the player name.
	Name() string

	// Available checks if the program exists in PATH.
	Available() bool
}

// New creates a player by name. "browser" (or "") uses the system URL
// opener; any other name is launched as a browser binary.
func New(name string) (Player, error) {
	switch name {
	case "", "browser", "default":
		return NewBrowser(), nil
	default:
		if err := validateName(name); err != nil {
			return nil, err
		}
		return &Generic{name: name}, nil
	}
}

// runner starts a prepared command. Replaced in tests.
type runner func(cmd *exec.Cmd) error

// detach starts cmd without waiting for it to exit.
func detach(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func validateName(name string) error {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("invalid player name %q", name)
		}
	}
	return nil
}
