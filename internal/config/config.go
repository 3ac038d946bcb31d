// Package config loads application settings from defaults, an optional TOML
// file and the environment, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"
)

// Config is the full application configuration.
type Config struct {
	Env                string         `toml:"env"`
	Port               int            `toml:"port"`
	LogLevel           string         `toml:"log_level"`
	AccessTokenSecret  string         `toml:"access_token_secret"`
	CORSAllowedOrigins []string       `toml:"cors_allowed_origins"`
	Database           DatabaseConfig `toml:"database"`
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite";
// Path is only used by sqlite.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Name         string `toml:"name"`
	Schema       string `toml:"schema"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Env:                "development",
		Port:               8080,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"https://*", "http://*"},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			MaxOpenConns: 100,
			MaxIdleConns: 10,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
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
	setString(&c.Env, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
	if err := setInt(&c.Port, "PORT"); err != nil {
		return err
	}

	db := &c.Database
	setString(&db.Driver, "DB_DRIVER")
	setString(&db.Path, "DB_PATH")
	setString(&db.Host, "BLUEPRINT_DB_HOST")
	setString(&db.Port, "BLUEPRINT_DB_PORT")
	setString(&db.Username, "BLUEPRINT_DB_USERNAME")
	setString(&db.Password, "BLUEPRINT_DB_PASSWORD")
	setString(&db.Name, "BLUEPRINT_DB_DATABASE")
	setString(&db.Schema, "BLUEPRINT_DB_SCHEMA")
	if err := setInt(&db.MaxOpenConns, "DB_MAX_OPEN_CONNS"); err != nil {
		return err
	}
	return setInt(&db.MaxIdleConns, "DB_MAX_IDLE_CONNS")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.AccessTokenSecret) == "" {
		return errors.New("ACCESS_TOKEN_SECRET must be set")
	}
	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// IsDevelopment reports whether verbose request logging should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
