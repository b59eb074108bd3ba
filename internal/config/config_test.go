package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mark", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("base-url", "", "")
	fs.String("log-level", "", "")
	fs.Duration("poll-interval", 0, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.BaseURL, cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.AutoDismiss)
	assert.Zero(t, cfg.MaxPolls)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Empty(t, cfg.FileUsed)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
base_url: http://file:5000
poll_interval: 5s
log_level: warn
max_polls: 30
`)
	t.Setenv("MARK_LOG_LEVEL", "debug")
	t.Setenv("MARK_POLL_INTERVAL", "7s")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--poll-interval=1s"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.FileUsed)
	assert.Equal(t, "http://file:5000", cfg.BaseURL, "file beats defaults")
	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")
	assert.Equal(t, time.Second, cfg.PollInterval, "flag beats env")
	assert.Equal(t, 30, cfg.MaxPolls)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	t.Setenv("MARK_BASE_URL", "http://env:5000")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "http://env:5000", cfg.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults_ok", mutate: func(c *Config) {}},
		{name: "empty_base_url", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: "base_url"},
		{name: "zero_interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: "poll_interval"},
		{name: "negative_polls", mutate: func(c *Config) { c.MaxPolls = -1 }, wantErr: "max_polls"},
		{name: "bad_output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: "output"},
		{name: "light_theme", mutate: func(c *Config) { c.Theme = "light" }},
		{name: "bad_theme", mutate: func(c *Config) { c.Theme = "neon" }, wantErr: "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
