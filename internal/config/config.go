// Package config loads jotter's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/taigrr/jotter/internal/grammar"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "jotter"
	configFile = "config.yaml"
)

type (
	// Config is the full configuration.
	Config struct {
		DataDir  string       `yaml:"data_dir"`
		LogFile  string       `yaml:"log_file"`
		LogLevel string       `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
		Timezone string       `yaml:"timezone"`
		Gemini   GeminiConfig `yaml:"gemini"`

		// APIKey comes from GEMINI_API_KEY and is never read from the file.
		APIKey string `yaml:"-"`
	}

	// GeminiConfig configures the grammar correction endpoint.
	GeminiConfig struct {
		Endpoint string        `yaml:"endpoint" validate:"required,url"`
		Model    string        `yaml:"model" validate:"required"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		LogLevel: "info",
		Gemini: GeminiConfig{
			Endpoint: grammar.DefaultEndpoint,
			Model:    grammar.DefaultModel,
			Timeout:  grammar.DefaultTimeout,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/jotter/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, configFile)
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from path, or from DefaultPath when path is
// empty. A missing file yields the defaults. Environment overrides are
// applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("JOTTER_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.APIKey = key
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataDir == "" {
		return errors.New("invalid config: data_dir is empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the timezone used to display dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
