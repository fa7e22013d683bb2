// Package config loads wasm settings from defaults, a YAML file and WASM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/wasmhost/wasm/encryption"
	"github.com/wasmhost/wasm/logging"
	"github.com/wasmhost/wasm/validators"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/wasm/config.yaml"
	DatabaseFile      = "wasm.db"
)

// EnvProvider abstracts environment variable access for testing
type EnvProvider interface {
	Getenv(key string) string
}

// DefaultEnvProvider implements EnvProvider using real OS functions
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

// Config holds configuration for all services
type Config struct {
	// Core paths
	AppsDir      string
	LogDir       string
	DataDir      string
	DatabasePath string
	ConfigPath   string

	// Logging
	LogLevel     string
	ColorEnabled bool

	// Git
	GitTimeout time.Duration

	// Ports
	PortProbeHost    string
	PortProbeTimeout time.Duration
	PortSearchLimit  int

	// Encryption of stored git credentials; optional
	EncryptionKey string

	// External collaborators
	NginxSitesAvailable string
	NginxSitesEnabled   string
	SystemdDir          string

	// values read from the config file, without defaults, env or derived paths
	file yamlConfig
	env  EnvProvider
}

// yamlConfig mirrors the on-disk layout of the config file.
type yamlConfig struct {
	AppsDir       string `yaml:"apps_dir,omitempty"`
	LogDir        string `yaml:"log_dir,omitempty"`
	DataDir       string `yaml:"data_dir,omitempty"`
	DatabasePath  string `yaml:"database_path,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	ColorEnabled  *bool  `yaml:"color_enabled,omitempty"`
	EncryptionKey string `yaml:"encryption_key,omitempty"`
	Git           struct {
		Timeout string `yaml:"timeout,omitempty"`
	} `yaml:"git,omitempty"`
	Ports struct {
		ProbeHost    string `yaml:"probe_host,omitempty"`
		ProbeTimeout string `yaml:"probe_timeout,omitempty"`
		SearchLimit  int    `yaml:"search_limit,omitempty"`
	} `yaml:"ports,omitempty"`
	Nginx struct {
		SitesAvailable string `yaml:"sites_available,omitempty"`
		SitesEnabled   string `yaml:"sites_enabled,omitempty"`
	} `yaml:"nginx,omitempty"`
	Systemd struct {
		UnitDir string `yaml:"unit_dir,omitempty"`
	} `yaml:"systemd,omitempty"`
}

// NewConfig loads configuration using the real process environment.
// An empty configPath means WASM_CONFIG or DefaultConfigPath, either of which may be absent.
func NewConfig(configPath string) (*Config, error) {
	return NewConfigWithEnv(configPath, &DefaultEnvProvider{})
}

// NewConfigWithEnv creates a configuration with a custom environment provider (for testing)
func NewConfigWithEnv(configPath string, env EnvProvider) (*Config, error) {
	c := &Config{env: env}

	c.setDefaults()

	explicit := configPath != ""
	if !explicit {
		configPath = env.Getenv("WASM_CONFIG")
		explicit = configPath != ""
	}
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	expanded, err := homedir.Expand(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %s: %w", configPath, err)
	}
	c.ConfigPath = expanded

	if err := c.loadFromFile(c.ConfigPath); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	c.loadFromEnv()

	if err := c.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// setDefaults sets sensible default values
func (c *Config) setDefaults() {
	c.AppsDir = "/var/www/apps"
	c.LogDir = "/var/log/wasm"
	c.DataDir = "/var/lib/wasm"
	c.LogLevel = "warning"
	c.ColorEnabled = true
	c.GitTimeout = 5 * time.Minute
	c.PortProbeHost = "0.0.0.0"
	c.PortProbeTimeout = validators.DefaultProbeTimeout
	c.PortSearchLimit = 100
	c.NginxSitesAvailable = "/etc/nginx/sites-available"
	c.NginxSitesEnabled = "/etc/nginx/sites-enabled"
	c.SystemdDir = "/etc/systemd/system"
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.file = yc

	setString(&c.AppsDir, yc.AppsDir)
	setString(&c.LogDir, yc.LogDir)
	setString(&c.DataDir, yc.DataDir)
	setString(&c.DatabasePath, yc.DatabasePath)
	setString(&c.LogLevel, yc.LogLevel)
	if yc.ColorEnabled != nil {
		c.ColorEnabled = *yc.ColorEnabled
	}
	setString(&c.EncryptionKey, yc.EncryptionKey)
	setString(&c.PortProbeHost, yc.Ports.ProbeHost)
	if yc.Ports.SearchLimit != 0 {
		c.PortSearchLimit = yc.Ports.SearchLimit
	}
	setString(&c.NginxSitesAvailable, yc.Nginx.SitesAvailable)
	setString(&c.NginxSitesEnabled, yc.Nginx.SitesEnabled)
	setString(&c.SystemdDir, yc.Systemd.UnitDir)

	if yc.Git.Timeout != "" {
		d, err := time.ParseDuration(yc.Git.Timeout)
		if err != nil {
			return fmt.Errorf("invalid git.timeout %q: %w", yc.Git.Timeout, err)
		}
		c.GitTimeout = d
	}
	if yc.Ports.ProbeTimeout != "" {
		d, err := time.ParseDuration(yc.Ports.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid ports.probe_timeout %q: %w", yc.Ports.ProbeTimeout, err)
		}
		c.PortProbeTimeout = d
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	setString(&c.AppsDir, c.env.Getenv("WASM_APPS_DIR"))
	setString(&c.LogDir, c.env.Getenv("WASM_LOG_DIR"))
	setString(&c.DataDir, c.env.Getenv("WASM_DATA_DIR"))
	setString(&c.DatabasePath, c.env.Getenv("WASM_DATABASE_PATH"))
	setString(&c.LogLevel, c.env.Getenv("WASM_LOG_LEVEL"))
	setString(&c.EncryptionKey, c.env.Getenv("WASM_ENCRYPTION_KEY"))
	setString(&c.PortProbeHost, c.env.Getenv("WASM_PORT_PROBE_HOST"))
	setString(&c.NginxSitesAvailable, c.env.Getenv("WASM_NGINX_SITES_AVAILABLE"))
	setString(&c.NginxSitesEnabled, c.env.Getenv("WASM_NGINX_SITES_ENABLED"))
	setString(&c.SystemdDir, c.env.Getenv("WASM_SYSTEMD_DIR"))

	if v := c.env.Getenv("WASM_COLOR_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.ColorEnabled = enabled
		}
	}
	if v := c.env.Getenv("WASM_GIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.GitTimeout = d
		}
	}
	if v := c.env.Getenv("WASM_PORT_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PortProbeTimeout = d
		}
	}
	if v := c.env.Getenv("WASM_PORT_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PortSearchLimit = n
		}
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.AppsDir, &c.LogDir, &c.DataDir, &c.DatabasePath} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// derivePaths calculates dependent paths from the base DataDir
func (c *Config) derivePaths() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, DatabaseFile)
	}
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	if !logging.IsValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of %v)", c.LogLevel, logging.ValidLogLevels())
	}

	if c.AppsDir == "" {
		return fmt.Errorf("apps directory cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.GitTimeout <= 0 {
		return fmt.Errorf("git timeout must be positive, got: %v", c.GitTimeout)
	}

	if c.PortProbeTimeout <= 0 {
		return fmt.Errorf("port probe timeout must be positive, got: %v", c.PortProbeTimeout)
	}

	if c.EncryptionKey != "" {
		if _, err := encryption.NewEncryptionService(c.EncryptionKey); err != nil {
			return err
		}
	}

	if c.PortSearchLimit < 1 || c.PortSearchLimit > validators.MaxPort {
		return fmt.Errorf("invalid port search limit: %d (must be 1-%d)", c.PortSearchLimit, validators.MaxPort)
	}

	return nil
}

// Save writes the configuration as YAML to path, creating parent directories.
// New files get mode 0600.
func (c *Config) Save(path string) error {
	var yc yamlConfig
	yc.AppsDir = c.AppsDir
	yc.LogDir = c.LogDir
	yc.DataDir = c.DataDir
	yc.DatabasePath = c.DatabasePath
	yc.LogLevel = c.LogLevel
	colorEnabled := c.ColorEnabled
	yc.ColorEnabled = &colorEnabled
	yc.EncryptionKey = c.EncryptionKey
	yc.Git.Timeout = c.GitTimeout.String()
	yc.Ports.ProbeHost = c.PortProbeHost
	yc.Ports.ProbeTimeout = c.PortProbeTimeout.String()
	yc.Ports.SearchLimit = c.PortSearchLimit
	yc.Nginx.SitesAvailable = c.NginxSitesAvailable
	yc.Nginx.SitesEnabled = c.NginxSitesEnabled
	yc.Systemd.UnitDir = c.SystemdDir

	return writeConfigFile(path, &yc)
}

// SetEncryptionKey sets the key and marks it for SaveFile.
func (c *Config) SetEncryptionKey(key string) {
	c.EncryptionKey = key
	c.file.EncryptionKey = key
}

// SaveFile writes back what was read from the config file plus a key set
// with SetEncryptionKey. Defaults, environment overrides and derived paths
// are not written.
func (c *Config) SaveFile(path string) error {
	return writeConfigFile(path, &c.file)
}

func writeConfigFile(path string, yc *yamlConfig) error {
	data, err := yaml.Marshal(yc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
