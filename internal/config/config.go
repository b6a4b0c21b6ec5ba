// Package config loads the daemon configuration from an optional TOML file,
// with environment variables taking precedence over file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings for the handla daemon.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/handla/config.toml"
	defaultPort       = "8080"
	defaultDBPath     = "handla.db"
	defaultLogLevel   = "info"
)

// Load reads the config file at path (or the default location when empty),
// falling back to defaults when missing, then applies HANDLA_* environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Config{Port: defaultPort, DBPath: defaultDBPath, LogLevel: defaultLogLevel}

	explicit := strings.TrimSpace(path) != ""
	resolved, err := resolvePath(path)
	switch {
	case err == nil:
		if err := loadFile(resolved, &cfg); err != nil {
			return Config{}, err
		}
	case explicit:
		// A path the caller asked for must resolve; only the default
		// location may be skipped quietly.
		return Config{}, fmt.Errorf("resolve config path %q: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Port     string `toml:"port"`
		DBPath   string `toml:"db_path"`
		LogLevel string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Port); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(raw.DBPath); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HANDLA_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("HANDLA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HANDLA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
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
