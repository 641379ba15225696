// Package logging builds the charmbracelet logger shared by all components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

func prefix() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#6C5CE7")).
		Bold(true).
		Padding(0, 1).
		Render("marquee")
}

// New returns a logger writing to w. Debug mode lowers the level and adds
// timestamps and caller information.
func New(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: debug,
		TimeFormat:      "15:04:05",
		Prefix:          prefix(),
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Used in tests and when the
// TUI owns the terminal without --debug.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens (appending) the log file at path, creating parent dirs.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
