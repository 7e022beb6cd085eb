package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the storefront client settings.
type Config struct {
	// APIURL is the catalog API. It is ignored when EmbeddedAPI is set.
	APIURL        string
	BasePath      string
	StorageDriver string
	StoragePath   string
	LogFile       string
	LogLevel      string
	PageLimit     int
	// Theme forces a terminal theme. Empty restores the last one used.
	Theme string
	// MockBind is the listen address of `shopfront serve`.
	MockBind string
	// EmbeddedAPI starts the mock API in-process on an ephemeral port.
	EmbeddedAPI bool
}

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

const (
	defaultConfigPath  = "~/.config/shopfront/config.toml"
	defaultDataDir     = "~/.local/share/shopfront"
	defaultAPIURL      = "http://127.0.0.1:7490"
	defaultMockBind    = "127.0.0.1:7490"
	defaultPageLimit   = 20
	maxPageLimit       = 100
	defaultLogFileName = "shopfront.log"
)

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Default returns the settings used when no config file exists.
func Default() Config {
	cfg := Config{
		APIURL:        defaultAPIURL,
		StorageDriver: DriverFile,
		PageLimit:     defaultPageLimit,
		MockBind:      defaultMockBind,
		EmbeddedAPI:   true,
	}
	cfg.fillPaths()
	return cfg
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL        string `toml:"api_url"`
		BasePath      string `toml:"base_path"`
		StorageDriver string `toml:"storage_driver"`
		StoragePath   string `toml:"storage_path"`
		LogFile       string `toml:"log_file"`
		LogLevel      string `toml:"log_level"`
		PageLimit     int    `toml:"page_limit"`
		Theme         string `toml:"theme"`
		MockBind      string `toml:"mock_bind"`
		EmbeddedAPI   *bool  `toml:"embedded_api"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		APIURL:        strings.TrimRight(strings.TrimSpace(raw.APIURL), "/"),
		BasePath:      strings.TrimSpace(raw.BasePath),
		StorageDriver: strings.ToLower(strings.TrimSpace(raw.StorageDriver)),
		StoragePath:   strings.TrimSpace(raw.StoragePath),
		LogFile:       strings.TrimSpace(raw.LogFile),
		LogLevel:      strings.TrimSpace(raw.LogLevel),
		PageLimit:     raw.PageLimit,
		Theme:         strings.TrimSpace(raw.Theme),
		MockBind:      strings.TrimSpace(raw.MockBind),
		EmbeddedAPI:   true,
	}
	if raw.EmbeddedAPI != nil {
		cfg.EmbeddedAPI = *raw.EmbeddedAPI
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverFile
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.PageLimit > maxPageLimit {
		cfg.PageLimit = maxPageLimit
	}
	if cfg.MockBind == "" {
		cfg.MockBind = defaultMockBind
	}
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("invalid storage_driver %q (want file, sqlite or memory)", c.StorageDriver)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}
	return nil
}

func (c *Config) fillPaths() {
	if c.StoragePath == "" {
		switch c.StorageDriver {
		case DriverSQLite:
			c.StoragePath = defaultDataDir + "/storage.db"
		case DriverFile:
			c.StoragePath = defaultDataDir + "/storage.toml"
		}
	}
	if c.StoragePath != "" {
		c.StoragePath = mustExpand(c.StoragePath)
	}
	if c.LogFile == "" {
		c.LogFile = defaultDataDir + "/" + defaultLogFileName
	}
	c.LogFile = mustExpand(c.LogFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
