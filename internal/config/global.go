// Package config loads watchprocess settings from an optional YAML file and
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/storage"
)

// Environment variables. Each one, when set, wins over the config file.
const (
	EnvDebug            = "WATCHPROCESS_DEBUG"
	EnvResultsDirectory = "WATCHPROCESS_RESULTS_DIRECTORY"
	EnvConfig           = "WATCHPROCESS_CONFIG"
	EnvGit              = "WATCHPROCESS_GIT"
)

// Config holds watchprocess settings.
type Config struct {
	ResultsDirectory string `yaml:"results_directory"`
	Debug            bool   `yaml:"debug"`
	// MaxDuration is passed to the timer but never enforced.
	MaxDuration    time.Duration `yaml:"max_duration"`
	PackageMarkers []string      `yaml:"package_markers"`
	Git            bool          `yaml:"git"`
	Log            LogConfig     `yaml:"log"`
}

// LogConfig holds file logging settings. File logging is off unless Dir is
// set.
type LogConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ResultsDirectory: storage.DefaultDir(),
		Log: LogConfig{
			RetentionDays: 14,
		},
	}
}

// Load reads the config file and applies environment overrides. A missing
// or malformed file leaves the defaults in place.
func Load() (*Config, error) {
	cfg := Default()

	path := Path()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Debug("ignoring malformed config file", "path", path, "error", err)
		}
	}

	if v := os.Getenv(EnvResultsDirectory); v != "" {
		cfg.ResultsDirectory = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		cfg.Debug = Truthy(v)
	}
	if v := os.Getenv(EnvGit); v != "" {
		cfg.Git = Truthy(v)
	}
	if cfg.ResultsDirectory == "" {
		cfg.ResultsDirectory = storage.DefaultDir()
	}

	return cfg, nil
}

// Path returns the config file location: $WATCHPROCESS_CONFIG, or
// ~/.watchprocess/config.yaml.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Dir returns the path to ~/.watchprocess.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".watchprocess")
	}
	return filepath.Join(homeDir, ".watchprocess")
}

// Truthy reports whether v switches a toggle on: "1" or "true" in any case.
func Truthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
