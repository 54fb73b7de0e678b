package config

import (
	"errors"
	"io/fs"

	"github.com/prettymuchbryce/allureview/internal/pathutil"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Extract ExtractConfig `yaml:"extract"`
	Summary SummaryConfig `yaml:"summary"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the ephemeral report server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"` // 0 lets the OS choose
	OpenBrowser bool   `yaml:"open_browser"`
	Watch       bool   `yaml:"watch"`
}

// ExtractConfig controls archive extraction.
type ExtractConfig struct {
	// TempDir overrides the extraction root next to the executable.
	TempDir string   `yaml:"temp_dir"`
	Ignore  []string `yaml:"ignore"`
}

// SummaryConfig controls the report summary printed at startup.
type SummaryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TimeFormat string `yaml:"time_format"` // strftime-style
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:        "localhost",
		Port:        0,
		OpenBrowser: true,
	}
}

// DefaultSummaryConfig returns the default summary configuration.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		Enabled:    true,
		TimeFormat: "%Y-%m-%d %H:%M:%S",
	}
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "info",
	}
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Server:  DefaultServerConfig(),
		Summary: DefaultSummaryConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// Load reads and parses a configuration file using the real filesystem.
func Load(path string) (*Config, error) {
	return LoadWithFs(path, afero.NewOsFs())
}

// LoadWithFs reads and parses a configuration file using the provided filesystem.
func LoadWithFs(path string, afs afero.Fs) (*Config, error) {
	data, err := afero.ReadFile(afs, pathutil.ExpandTilde(path))
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOptional behaves like LoadWithFs but returns defaults when the file
// does not exist. The config file is optional for allureview.
func LoadOptional(path string, afs afero.Fs) (*Config, error) {
	config, err := LoadWithFs(path, afs)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Server.Host == "" {
		return ErrEmptyHost
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.Summary.Enabled && c.Summary.TimeFormat == "" {
		return ErrEmptyTimeFormat
	}
	return nil
}
