package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all HemoScan client configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Retry RetryConfig `yaml:"retry"`

	// DBPath is the sqlite file holding credentials and the request log.
	// Empty means the XDG default.
	DBPath string `yaml:"db_path"`

	// LogFile receives structured logs. Empty means the XDG default.
	LogFile string `yaml:"log_file"`

	// ReportDir is where downloaded reports are written. Default: ".".
	ReportDir string `yaml:"report_dir"`

	// StatsInterval is the admin dashboard refresh period. Default: 30s.
	StatsInterval time.Duration `yaml:"stats_interval"`
}

// APIConfig configures the remote scoring service.
type APIConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:5000"

	// Timeout bounds a single HTTP request (including retries).
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig configures retry behavior for idempotent requests.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		ReportDir:     ".",
		StatsInterval: 30 * time.Second,
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HEMOSCAN_* environment variables.
func (c *Config) ApplyEnv() error {
	if u := os.Getenv("HEMOSCAN_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if p := os.Getenv("HEMOSCAN_DB"); p != "" {
		c.DBPath = p
	}
	if p := os.Getenv("HEMOSCAN_LOG_FILE"); p != "" {
		c.LogFile = p
	}
	if d := os.Getenv("HEMOSCAN_REPORT_DIR"); d != "" {
		c.ReportDir = d
	}
	if t := os.Getenv("HEMOSCAN_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("HEMOSCAN_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry max_attempts must be at least 1")
	}
	if c.Retry.Multiplier < 1 {
		return errors.New("retry multiplier must be >= 1")
	}
	if c.StatsInterval < time.Second {
		return errors.New("stats_interval must be at least 1s")
	}
	return nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/hemoscan/config.yaml.
func DefaultConfigPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "hemoscan", "config.yaml"), nil
}
