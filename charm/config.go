// ABOUTME: Connection settings for the Charm KV backend
// ABOUTME: Persisted as JSON under the XDG data directory with env overrides

package charm

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the Charm KV database and the local data directory.
	AppName = "rolodex"

	// ConfigFileName is where we store local config.
	ConfigFileName = "charm-config.json"

	// HostEnv overrides the configured host for one process.
	HostEnv = "ROLODEX_CHARM_HOST"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`

	// AutoSync pushes the snapshot after every write and pulls on open.
	AutoSync bool `json:"auto_sync"`

	path string
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultCharmHost,
		AutoSync: true,
	}
}

// ConfigPath is the default location of the charm config file.
func ConfigPath() string {
	return filepath.Join(xdg.DataHome, AppName, ConfigFileName)
}

// LoadConfig loads the config from ConfigPath.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom reads path, falling back to defaults when the file is
// missing or unreadable JSON.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		var onDisk Config
		if jsonErr := json.Unmarshal(data, &onDisk); jsonErr == nil {
			cfg.AutoSync = onDisk.AutoSync
			if onDisk.Host != "" {
				cfg.Host = onDisk.Host
			}
		}
	}

	if host := os.Getenv(HostEnv); host != "" {
		cfg.Host = host
	}
	cfg.path = path
	return cfg, nil
}

// Save persists the config to the path it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SetAutoSync enables or disables auto-sync and saves.
func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}
