// Package config loads the server configuration.
// Priority: defaults -> TOML file -> .env file -> environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig contains the listener and auth settings
type ServerConfig struct {
	GRPCAddr       string   `toml:"grpc_addr"`
	HTTPAddr       string   `toml:"http_addr"` // Empty disables the admin HTTP server
	APIToken       string   `toml:"api_token"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL settings
// ConnString wins over the individual fields when set.
type DatabaseConfig struct {
	ConnString string `toml:"conn_string"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Name       string `toml:"name"`
	Migrate    bool   `toml:"migrate"`
}

// CacheConfig contains the report cache settings
type CacheConfig struct {
	Capacity      int    `toml:"capacity"`
	ClearSchedule string `toml:"clear_schedule"` // Cron expression, empty disables
	SnapshotTTL   string `toml:"snapshot_ttl"`   // Go duration, "0s" disables snapshot caching
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns the configuration used when nothing is set
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr:       ":8080",
			HTTPAddr:       ":8081",
			APIToken:       "dev-token",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Name:     "wealthflow",
			Migrate:  true,
		},
		Cache: CacheConfig{
			Capacity:    100,
			SnapshotTTL: "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration
// path is an optional TOML file; a missing .env file is ignored.
func Load(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	setString(&config.Server.GRPCAddr, "GRPC_ADDR")
	setString(&config.Server.HTTPAddr, "HTTP_ADDR")
	setString(&config.Server.APIToken, "API_TOKEN")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = splitList(origins)
	}

	setString(&config.Database.ConnString, "DB_CONN_STR")
	setString(&config.Database.Host, "DB_HOST")
	setString(&config.Database.User, "DB_USER")
	setString(&config.Database.Password, "DB_PASSWORD")
	setString(&config.Database.Name, "DB_NAME")
	if err := setInt(&config.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setBool(&config.Database.Migrate, "DB_MIGRATE"); err != nil {
		return err
	}

	if err := setInt(&config.Cache.Capacity, "CACHE_CAPACITY"); err != nil {
		return err
	}
	setString(&config.Cache.ClearSchedule, "CACHE_CLEAR_SCHEDULE")
	setString(&config.Cache.SnapshotTTL, "SNAPSHOT_TTL")

	setString(&config.Logging.Level, "LOG_LEVEL")
	setString(&config.Logging.Format, "LOG_FORMAT")
	return nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return errors.New("grpc address cannot be empty")
	}
	if c.Server.APIToken == "" {
		return errors.New("api token cannot be empty")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.Cache.Capacity)
	}
	ttl, err := time.ParseDuration(c.Cache.SnapshotTTL)
	if err != nil {
		return fmt.Errorf("invalid snapshot ttl %q: %w", c.Cache.SnapshotTTL, err)
	}
	if ttl < 0 {
		return errors.New("snapshot ttl cannot be negative")
	}
	if c.Cache.ClearSchedule != "" {
		if _, err := cron.ParseStandard(c.Cache.ClearSchedule); err != nil {
			return fmt.Errorf("invalid cache clear schedule %q: %w", c.Cache.ClearSchedule, err)
		}
	}
	return nil
}

// SnapshotTTLDuration returns the parsed snapshot TTL, or 0 when it is not a valid duration
func (c CacheConfig) SnapshotTTLDuration() time.Duration {
	ttl, err := time.ParseDuration(c.SnapshotTTL)
	if err != nil {
		return 0
	}
	return ttl
}

// ConnectionString returns the PostgreSQL connection string
func (d DatabaseConfig) ConnectionString() string {
	if d.ConnString != "" {
		return d.ConnString
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*target = n
	return nil
}

func setBool(target *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*target = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
