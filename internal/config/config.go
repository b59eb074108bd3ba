package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MARK_"

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "mark.yaml"

// Output formats for subcommands.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Themes are the color themes of the interactive UI.
var Themes = []string{"mark", "light"}

// Config represents the mark configuration
type Config struct {
	// Backend settings
	BaseURL        string        `koanf:"base_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// Job polling
	PollInterval time.Duration `koanf:"poll_interval"`
	MaxPolls     int           `koanf:"max_polls"`
	AutoDismiss  time.Duration `koanf:"auto_dismiss"`

	// Logging and output
	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`
	Output   string `koanf:"output"`
	Theme    string `koanf:"theme"`

	// MetricsAddr serves Prometheus metrics when set.
	MetricsAddr string `koanf:"metrics_addr"`

	// StateFile remembers the last analyzed folders between runs when set.
	StateFile string `koanf:"state_file"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost:5000",
		PollInterval: 2 * time.Second,
		AutoDismiss:  3 * time.Second,
		LogLevel:     "info",
		LogFile:      ".mark/mark.log",
		Output:       OutputText,
		Theme:        "mark",
	}
}

func defaultsMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"base_url":        d.BaseURL,
		"request_timeout": d.RequestTimeout.String(),
		"poll_interval":   d.PollInterval.String(),
		"max_polls":       d.MaxPolls,
		"auto_dismiss":    d.AutoDismiss.String(),
		"log_level":       d.LogLevel,
		"log_file":        d.LogFile,
		"output":          d.Output,
		"theme":           d.Theme,
		"metrics_addr":    d.MetricsAddr,
		"state_file":      d.StateFile,
	}
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// MARK_POLL_INTERVAL -> poll_interval
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, else DefaultFile when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Validate rejects values the front end cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	if c.MaxPolls < 0 {
		errs = append(errs, fmt.Errorf("max_polls must not be negative, got %d", c.MaxPolls))
	}
	if c.AutoDismiss < 0 {
		errs = append(errs, fmt.Errorf("auto_dismiss must not be negative, got %s", c.AutoDismiss))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		errs = append(errs, fmt.Errorf("output must be %q or %q, got %q", OutputText, OutputJSON, c.Output))
	}
	if !slices.Contains(Themes, c.Theme) {
		errs = append(errs, fmt.Errorf("theme must be one of %s, got %q", strings.Join(Themes, ", "), c.Theme))
	}
	return errors.Join(errs...)
}
