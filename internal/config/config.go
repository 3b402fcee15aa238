package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvServer       = "CHATLOG_SERVER"
	EnvTimeout      = "CHATLOG_TIMEOUT"
	EnvPageSize     = "CHATLOG_PAGE_SIZE"
	EnvStateBackend = "CHATLOG_STATE_BACKEND"
	EnvStateDir     = "CHATLOG_STATE_DIR"
	EnvMediaBase    = "CHATLOG_MEDIA_BASE"
	EnvTimezone     = "CHATLOG_TIMEZONE"
)

const (
	DefaultServer   = "http://127.0.0.1:3099"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 20
)

type Config struct {
	Server       string        `toml:"server"`
	Timeout      time.Duration `toml:"timeout"`
	PageSize     int           `toml:"page_size"`
	StateBackend string        `toml:"state_backend"`
	StateDir     string        `toml:"state_dir"`
	// MediaBase is the base address for media URLs; empty means Server
	MediaBase string `toml:"media_base"`
	// Timezone is used for transcript times without an offset
	Timezone string `toml:"timezone"`

	// Path is the config file that was read, empty when none existed
	Path string `toml:"-"`
}

// DefaultPath returns ~/.config/chatlog-viewer/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatlog-viewer", "config.toml"), nil
}

// Default returns the built-in configuration
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Server:       DefaultServer,
		Timeout:      DefaultTimeout,
		PageSize:     DefaultPageSize,
		StateBackend: "yaml",
		StateDir:     filepath.Join(home, ".chatlog-viewer"),
	}, nil
}

// Load reads the config file at path, or the default path when path is
// empty. A missing default file is not an error; a missing explicit one is.
// Variables from a .env file in the working directory and the process
// environment override file values.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	cfg.StateDir = expandHome(cfg.StateDir, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.PageSize = n
	}
	if v := os.Getenv(EnvStateBackend); v != "" {
		c.StateBackend = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv(EnvMediaBase); v != "" {
		c.MediaBase = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	switch c.StateBackend {
	case "yaml", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported state_backend: %s (supported: yaml, sqlite, memory)", c.StateBackend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// MediaBaseURL returns the base address for media URLs
func (c *Config) MediaBaseURL() string {
	if c.MediaBase != "" {
		return c.MediaBase
	}
	return c.Server
}

// Location returns the configured timezone, time.Local when unset
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
