// ABOUTME: Application configuration stored at the XDG config path
// ABOUTME: Loads defaults, the JSON file, .env and ROLODEX_* environment overrides in that order
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/harperreed/rolodex/followup"
	"github.com/joho/godotenv"
)

const (
	AppName = "rolodex"

	BackendSQLite = "sqlite"
	BackendCharm  = "charm"

	DetectorSimulated = "simulated"
	DetectorCalendar  = "calendar"
	DetectorHTTP      = "http"
	DetectorNone      = "none"

	DefaultSyncInterval = 15 * time.Minute
	MinSyncInterval     = 5 * time.Minute
	DefaultWebPort      = 8080
)

// Config holds user settings. Zero-valued fields fall back to defaults.
type Config struct {
	Backend        string `json:"backend"`
	DBPath         string `json:"db_path,omitempty"`
	SyncInterval   string `json:"sync_interval"`
	Detector       string `json:"detector"`
	DetectorURL    string `json:"detector_url,omitempty"`
	DetectorAPIKey string `json:"detector_api_key,omitempty"`
	DueFallback    string `json:"due_fallback"`
	SafeMode       bool   `json:"safe_mode"`
	WebPort        int    `json:"web_port"`
	LogLevel       string `json:"log_level"`
	LixAPIKey      string `json:"lix_api_key,omitempty"`

	path   string
	marker string
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendSQLite,
		SyncInterval: DefaultSyncInterval.String(),
		Detector:     DetectorSimulated,
		DueFallback:  string(followup.FallbackNone),
		WebPort:      DefaultWebPort,
		LogLevel:     "info",
	}
}

// Dir returns the XDG config directory for rolodex.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// DefaultDBPath returns the SQLite database location under XDG data.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "rolodex.db")
}

// SafeModeMarkerPath is the file whose presence enables safe mode.
func SafeModeMarkerPath() string {
	return filepath.Join(xdg.DataHome, AppName, "safe-mode")
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(Dir(), ".env")}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, applies environment overrides and
// validates the result. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strOverrides := map[string]*string{
		"ROLODEX_BACKEND":          &c.Backend,
		"ROLODEX_DB_PATH":          &c.DBPath,
		"ROLODEX_SYNC_INTERVAL":    &c.SyncInterval,
		"ROLODEX_DETECTOR":         &c.Detector,
		"ROLODEX_DETECTOR_URL":     &c.DetectorURL,
		"ROLODEX_DETECTOR_API_KEY": &c.DetectorAPIKey,
		"ROLODEX_DUE_FALLBACK":     &c.DueFallback,
		"ROLODEX_LOG_LEVEL":        &c.LogLevel,
		"LIX_API_KEY":              &c.LixAPIKey,
	}
	for key, dst := range strOverrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ROLODEX_WEB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ROLODEX_WEB_PORT %q: %w", v, err)
		}
		c.WebPort = port
	}
	if v := os.Getenv("ROLODEX_SAFE_MODE"); v != "" {
		c.SafeMode = truthy(v)
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate checks enumerated settings and the sync interval floor.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendCharm)
	}
	switch c.Detector {
	case DetectorSimulated, DetectorCalendar, DetectorNone:
	case DetectorHTTP:
		if c.DetectorURL == "" {
			return fmt.Errorf("detector %q requires detector_url", DetectorHTTP)
		}
	default:
		return fmt.Errorf("unknown detector %q", c.Detector)
	}
	if _, err := followup.ParseFallbackPolicy(c.DueFallback); err != nil {
		return err
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("invalid web port %d", c.WebPort)
	}
	return nil
}

// Interval parses SyncInterval. Values below the minimum are rejected.
func (c *Config) Interval() (time.Duration, error) {
	if c.SyncInterval == "" {
		return DefaultSyncInterval, nil
	}
	d, err := time.ParseDuration(c.SyncInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sync interval %q: %w", c.SyncInterval, err)
	}
	if d < MinSyncInterval {
		return 0, fmt.Errorf("sync interval %s is below the minimum of %s", d, MinSyncInterval)
	}
	return d, nil
}

// Fallback returns the parsed due-status fallback policy.
func (c *Config) Fallback() followup.FallbackPolicy {
	p, _ := followup.ParseFallbackPolicy(c.DueFallback)
	return p
}

// ResolvedDBPath returns DBPath or the XDG default.
func (c *Config) ResolvedDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBPath()
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SafeModeEnabled re-reads the environment and the marker file on every
// call so safe mode can be toggled on a running daemon.
func (c *Config) SafeModeEnabled() bool {
	if v, ok := os.LookupEnv("ROLODEX_SAFE_MODE"); ok && v != "" {
		return truthy(v)
	}
	if _, err := os.Stat(c.markerPath()); err == nil {
		return true
	}
	return c.SafeMode
}

func (c *Config) markerPath() string {
	if c.marker != "" {
		return c.marker
	}
	return SafeModeMarkerPath()
}

// SetSafeMode creates or removes the marker file.
func (c *Config) SetSafeMode(enabled bool) error {
	path := c.markerPath()
	if !enabled {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove safe mode marker: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, []byte("on\n"), 0600); err != nil {
		return fmt.Errorf("failed to write safe mode marker: %w", err)
	}
	return nil
}
