// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// APIKeyEnv overrides the api_key config value when set.
const APIKeyEnv = "TMDB_API_KEY"

// Config holds all application configuration.
type Config struct {
	APIKey              string   `toml:"api_key"`
	Language            string   `toml:"language"`
	APIBase             string   `toml:"api_base"`
	ImageBase           string   `toml:"image_base"`
	EmbedDomains        []string `toml:"embed_domains"`
	Probe               string   `toml:"probe"`
	ProbeTimeoutSeconds int      `toml:"probe_timeout_seconds"`
	CacheMinutes        int      `toml:"cache_minutes"`
	BatchSize           int      `toml:"batch_size"`
	Filter              bool     `toml:"filter"`
	FailOpen            bool     `toml:"fail_open"`
	XRefRate            float64  `toml:"xref_rate"`
	XRefBurst           int      `toml:"xref_burst"`
	Player              string   `toml:"player"`
	Debug               bool     `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Language:            "pt-BR",
		APIBase:             "https://api.themoviedb.org/3",
		ImageBase:           "https://image.tmdb.org/t/p",
		EmbedDomains:        []string{"embed.warezcdn.com"},
		Probe:               "optimistic",
		ProbeTimeoutSeconds: 5,
		CacheMinutes:        10,
		BatchSize:           5,
		Filter:              true,
		FailOpen:            true,
		XRefRate:            20,
		XRefBurst:           5,
		Player:              "browser",
		Debug:               false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "marquee"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "marquee"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults and the environment.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
// The API key is not checked here; only commands that reach TMDB need it.
func (c *Config) Validate() error {
	validProbes := map[string]bool{
		"optimistic": true, "embed": true, "head": true,
	}
	if !validProbes[strings.ToLower(c.Probe)] {
		return fmt.Errorf("unsupported probe %q (valid: optimistic, embed, head)", c.Probe)
	}

	if c.Player == "" {
		return fmt.Errorf("player cannot be empty")
	}

	if !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("api_base must be an https URL, got %q", c.APIBase)
	}
	if !strings.HasPrefix(c.ImageBase, "https://") {
		return fmt.Errorf("image_base must be an https URL, got %q", c.ImageBase)
	}

	if len(c.EmbedDomains) == 0 {
		return fmt.Errorf("embed_domains cannot be empty")
	}
	for _, d := range c.EmbedDomains {
		if d == "" || strings.ContainsAny(d, "/:?# ") {
			return fmt.Errorf("invalid embed domain %q (host name only)", d)
		}
	}

	if c.ProbeTimeoutSeconds < 1 || c.ProbeTimeoutSeconds > 60 {
		return fmt.Errorf("probe_timeout_seconds out of range: %d (1-60)", c.ProbeTimeoutSeconds)
	}
	if c.CacheMinutes < 1 || c.CacheMinutes > 24*60 {
		return fmt.Errorf("cache_minutes out of range: %d (1-1440)", c.CacheMinutes)
	}
	if c.BatchSize < 1 || c.BatchSize > 50 {
		return fmt.Errorf("batch_size out of range: %d (1-50)", c.BatchSize)
	}
	if c.XRefRate <= 0 {
		return fmt.Errorf("xref_rate must be positive, got %v", c.XRefRate)
	}
	if c.XRefBurst < 1 {
		return fmt.Errorf("xref_burst must be at least 1, got %d", c.XRefBurst)
	}

	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	return nil
}

// ProbeTimeout returns the per-probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// CacheWindow returns the availability cache freshness window.
func (c *Config) CacheWindow() time.Duration {
	return time.Duration(c.CacheMinutes) * time.Minute
}

// LogPath returns the path of the debug log used while the TUI owns the terminal.
func LogPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "marquee", "debug.log"), nil
}
