// Package config handles the global pv configuration and data paths.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matsen/paperview/internal/citation"
)

// GlobalConfig represents configuration stored in ~/.config/pv/config.yml.
type GlobalConfig struct {
	BackendURL   string  `yaml:"backend_url,omitempty"`
	APIKey       string  `yaml:"api_key,omitempty"`
	DefaultStyle string  `yaml:"default_style,omitempty"`
	DownloadDir  string  `yaml:"download_dir,omitempty"`
	Timeout      string  `yaml:"timeout,omitempty"`    // Go duration, e.g. "5m"
	RateLimit    float64 `yaml:"rate_limit,omitempty"` // Requests per second
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pv"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultBackendURL is used when neither env nor config set one.
	DefaultBackendURL = "http://localhost:8000"
	// DefaultTimeout bounds a generation request.
	DefaultTimeout = 5 * time.Minute
	// DefaultRateLimit is requests per second to the backend.
	DefaultRateLimit = 1.0
)

// Environment variables that override the config file.
const (
	EnvBackendURL = "PV_BACKEND_URL"
	EnvAPIKey     = "PV_API_KEY"
)

// ErrUnknownKey is returned for config keys pv does not know.
var ErrUnknownKey = errors.New("unknown config key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pv/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DownloadDir != "" {
		cfg.DownloadDir = ExpandPath(cfg.DownloadDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to the global config file and refreshes
// the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return errors.New("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	// The file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = cfg
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// loaded returns the cached config, or an empty one if loading failed.
func loaded() *GlobalConfig {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return &GlobalConfig{}
	}
	return cfg
}

// GetConfigValue returns the environment variable if set, else the config value.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// GetBackendURL returns the backend base URL.
func GetBackendURL() string {
	if v := GetConfigValue(EnvBackendURL, loaded().BackendURL); v != "" {
		return v
	}
	return DefaultBackendURL
}

// GetAPIKey returns the backend API key, if any.
func GetAPIKey() string {
	return GetConfigValue(EnvAPIKey, loaded().APIKey)
}

// GetDefaultStyle returns the configured citation style, APA if unset or
// invalid.
func GetDefaultStyle() citation.Style {
	style, _ := citation.ParseStyle(loaded().DefaultStyle)
	return style
}

// GetDownloadDir returns where citation and draft files are written:
// the configured directory, else ~/Downloads if it exists, else the
// working directory.
func GetDownloadDir() string {
	if dir := loaded().DownloadDir; dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		dl := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dl); err == nil && info.IsDir() {
			return dl
		}
	}
	return "."
}

// GetTimeout returns the backend request timeout.
func GetTimeout() time.Duration {
	if d, err := time.ParseDuration(loaded().Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// GetRateLimit returns backend requests per second.
func GetRateLimit() float64 {
	if r := loaded().RateLimit; r > 0 {
		return r
	}
	return DefaultRateLimit
}

// setters validate and assign one config key.
var setters = map[string]func(*GlobalConfig, string) error{
	"backend_url": func(c *GlobalConfig, v string) error {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid backend_url %q: must be an http(s) URL", v)
		}
		c.BackendURL = strings.TrimRight(v, "/")
		return nil
	},
	"api_key": func(c *GlobalConfig, v string) error {
		c.APIKey = v
		return nil
	},
	"default_style": func(c *GlobalConfig, v string) error {
		var s citation.Style
		if err := s.UnmarshalText([]byte(v)); err != nil {
			return err
		}
		c.DefaultStyle = s.String()
		return nil
	},
	"download_dir": func(c *GlobalConfig, v string) error {
		c.DownloadDir = v
		return nil
	},
	"timeout": func(c *GlobalConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q: use a duration such as 90s or 5m", v)
		}
		c.Timeout = d.String()
		return nil
	},
	"rate_limit": func(c *GlobalConfig, v string) error {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("invalid rate_limit %q: must be a positive number", v)
		}
		c.RateLimit = r
		return nil
	},
}

// Keys returns the settable config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set validates value and assigns it to key.
func (c *GlobalConfig) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

// Get returns the stored value of key as text.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "backend_url":
		return c.BackendURL, nil
	case "api_key":
		return c.APIKey, nil
	case "default_style":
		return c.DefaultStyle, nil
	case "download_dir":
		return c.DownloadDir, nil
	case "timeout":
		return c.Timeout, nil
	case "rate_limit":
		if c.RateLimit == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.RateLimit, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
}

// HelpfulConfigMessage explains how to point pv at a backend.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Could not reach the research backend at %s.

Tip: set the backend URL with
  pv config set backend_url http://host:8000
or export %s. Settings live in %s.`,
		GetBackendURL(), EnvBackendURL, configPath)
}
