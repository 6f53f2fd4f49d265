// Package config persists user preferences between sessions.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultZone is used when nothing else specifies one.
const DefaultZone = "us-central1-a"

// SSHOptions controls how SSH shell actions invoke gcloud.
type SSHOptions struct {
	UseIAP    bool     `json:"use_iap"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

// Config is the persisted application configuration.
type Config struct {
	ProjectID    string            `json:"project_id,omitempty"`
	Zone         string            `json:"zone,omitempty"`
	LastResource string            `json:"last_resource,omitempty"`
	Aliases      map[string]string `json:"aliases,omitempty"`
	SSH          SSHOptions        `json:"ssh"`
}

// Dir returns the tgcp configuration directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "tgcp"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file. A missing file yields an empty config,
// not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config file. The directory is created 0700 and the
// file 0600 since aliases may reference project names.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.saveTo(path)
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	slog.Debug("config saved", "path", path)
	return nil
}

// Alias resolves a command alias to its target resource key.
func (c *Config) Alias(name string) (string, bool) {
	target, ok := c.Aliases[name]
	return target, ok
}

// SetAlias records a command alias.
func (c *Config) SetAlias(name, target string) {
	if c.Aliases == nil {
		c.Aliases = make(map[string]string)
	}
	c.Aliases[name] = target
}
