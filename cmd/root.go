// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagJSON     bool
	flagPrint    bool
	flagNoFilter bool
	flagProbe    string
	flagLanguage string
	flagPlayer   string
	flagDebug    bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// logger writes to stderr for one-shot commands. TUI commands replace it
// with a file or discard logger before the screen is taken over.
var logger *log.Logger

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Browse movies and series from the terminal",
	Long: `Marquee pages through TMDB listings, keeps only titles the embed
provider is believed to carry, and opens the provider's player in your browser.

Run without arguments for the home screen.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              homeRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print the playback handoff as JSON instead of opening it")
	rootCmd.PersistentFlags().BoolVar(&flagPrint, "print", false, "Print the player URL instead of opening it")
	rootCmd.PersistentFlags().BoolVar(&flagNoFilter, "no-filter", false, "Show every title, skipping availability checks")
	rootCmd.PersistentFlags().StringVar(&flagProbe, "probe", "", "Availability probe: optimistic | embed | head")
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Metadata language (default: pt-BR)")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Where to open the player: browser | <browser binary>")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging (stderr, or the state dir log file in the TUI)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(rouletteCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagProbe != "" {
		cfg.Probe = strings.ToLower(flagProbe)
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagNoFilter {
		cfg.Filter = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = logging.New(os.Stderr, cfg.Debug)
	return nil
}

// tuiLogger returns the logger used while the TUI owns the terminal, and a
// cleanup func.
func tuiLogger() (*log.Logger, func(), error) {
	if !cfg.Debug {
		return logging.Discard(), func() {}, nil
	}
	path, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(os.Stderr, "Debug log: %s\n", path)
	return logging.New(f, true), func() { f.Close() }, nil
}
