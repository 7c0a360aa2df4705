// Package config loads Pterodactyl panel settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	configDirName  = "pteromcp"

	// DefaultTimeout is the request timeout in seconds when none is configured.
	DefaultTimeout = 30
)

// Fatal startup conditions. The server refuses to start without a panel
// URL and at least one API key; there is no partial recovery for either.
var (
	ErrMissingPanelURL = errors.New("panel URL is required")
	ErrNoCredentials   = errors.New("at least one of client or application API key is required")
)

// Config is the resolved, validated panel connection configuration.
// It is constructed once at startup and read-only afterwards.
type Config struct {
	PanelURL          string
	ClientAPIKey      string
	ApplicationAPIKey string
	Timeout           int // request timeout in seconds
	VerifySSL         bool
}

// HasClientKey reports whether the user-scoped client API is enabled.
func (c Config) HasClientKey() bool { return c.ClientAPIKey != "" }

// HasApplicationKey reports whether the admin-scoped application API is enabled.
func (c Config) HasApplicationKey() bool { return c.ApplicationAPIKey != "" }

// fileConfig mirrors Config for YAML unmarshaling. Pointer fields; nil = unset.
type fileConfig struct {
	PanelURL          *string `yaml:"panel_url"`
	ClientAPIKey      *string `yaml:"client_api_key"`
	ApplicationAPIKey *string `yaml:"application_api_key"`
	Timeout           *int    `yaml:"timeout"`
	VerifySSL         *bool   `yaml:"verify_ssl"`
}

// LoadFrom loads config from path, applies PTERODACTYL_* environment
// overrides and defaults, and validates the result. A missing file is
// not an error; the environment alone can provide a full configuration.
func LoadFrom(path string) (Config, error) {
	var fc fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else if len(data) > 0 {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := fc.applyEnvOverrides(); err != nil {
		return Config{}, err
	}

	cfg := fc.resolve()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads config from the default path ($XDG_CONFIG_HOME/pteromcp/config.yaml).
func Load() (Config, error) {
	return LoadFrom(defaultConfigPath())
}

func (fc *fileConfig) applyEnvOverrides() error {
	// A variable set to the empty string is treated as unset, so an
	// empty env entry cannot blank out a credential from the file.
	if v := os.Getenv("PTERODACTYL_PANEL_URL"); v != "" {
		fc.PanelURL = &v
	}
	if v := os.Getenv("PTERODACTYL_CLIENT_API_KEY"); v != "" {
		fc.ClientAPIKey = &v
	}
	if v := os.Getenv("PTERODACTYL_APPLICATION_API_KEY"); v != "" {
		fc.ApplicationAPIKey = &v
	}
	if v := os.Getenv("PTERODACTYL_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PTERODACTYL_TIMEOUT: %w", err)
		}
		fc.Timeout = &n
	}
	if v := os.Getenv("PTERODACTYL_VERIFY_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse PTERODACTYL_VERIFY_SSL: %w", err)
		}
		fc.VerifySSL = &b
	}
	return nil
}

func (fc *fileConfig) resolve() Config {
	cfg := Config{
		Timeout:   DefaultTimeout,
		VerifySSL: true,
	}
	if fc.PanelURL != nil {
		cfg.PanelURL = *fc.PanelURL
	}
	if fc.ClientAPIKey != nil {
		cfg.ClientAPIKey = *fc.ClientAPIKey
	}
	if fc.ApplicationAPIKey != nil {
		cfg.ApplicationAPIKey = *fc.ApplicationAPIKey
	}
	if fc.Timeout != nil {
		cfg.Timeout = *fc.Timeout
	}
	if fc.VerifySSL != nil {
		cfg.VerifySSL = *fc.VerifySSL
	}
	return cfg
}

func (c Config) validate() error {
	if c.PanelURL == "" {
		return ErrMissingPanelURL
	}
	if !c.HasClientKey() && !c.HasApplicationKey() {
		return ErrNoCredentials
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if c.Timeout > 3600 {
		return fmt.Errorf("timeout must not exceed 3600 seconds, got %d", c.Timeout)
	}
	return nil
}

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName, configFileName)
}
