// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used by both binaries.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  string // "debug", "info", "warn", "error"
	LogFormat string // "text", "json"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Kafka fallback events
	KafkaBrokers       string // comma-separated; empty disables the broker
	KafkaFallbackTopic string
	KafkaGroupID       string

	// Product service association check
	ProductServiceURL     string // empty disables the remote check
	ProductServiceTimeout time.Duration
}

// defaults are applied for every key the environment leaves unset or empty.
var defaults = map[string]any{
	"APP_HOST":                "0.0.0.0",
	"APP_PORT":                "8080",
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "text",
	"POSTGRES_HOST":           "localhost",
	"POSTGRES_PORT":           "5432",
	"POSTGRES_USER":           "catalog",
	"POSTGRES_PASSWORD":       "changeme",
	"POSTGRES_DB":             "catalog",
	"VALKEY_HOST":             "localhost",
	"VALKEY_PORT":             "6379",
	"VALKEY_PASSWORD":         "",
	"VALKEY_DB":               0,
	"KAFKA_BROKERS":           "",
	"KAFKA_FALLBACK_TOPIC":    "product-category-cache-fallback",
	"KAFKA_GROUP_ID":          "product-category-reconciler",
	"PRODUCT_SERVICE_URL":     "",
	"PRODUCT_SERVICE_TIMEOUT": "5s",
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode or a value cannot be parsed.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("PRODUCT_SERVICE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("PRODUCT_SERVICE_TIMEOUT: %w", err)
	}
	valkeyDB, err := strconv.Atoi(strings.TrimSpace(v.GetString("VALKEY_DB")))
	if err != nil {
		return nil, fmt.Errorf("VALKEY_DB: %w", err)
	}
	if valkeyDB < 0 {
		return nil, fmt.Errorf("VALKEY_DB must not be negative, got %d", valkeyDB)
	}

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       valkeyDB,

		KafkaBrokers:       v.GetString("KAFKA_BROKERS"),
		KafkaFallbackTopic: v.GetString("KAFKA_FALLBACK_TOPIC"),
		KafkaGroupID:       v.GetString("KAFKA_GROUP_ID"),

		ProductServiceURL:     v.GetString("PRODUCT_SERVICE_URL"),
		ProductServiceTimeout: timeout,
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Brokers splits KafkaBrokers into addresses. Nil means no broker.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger: JSON or text output at LogLevel.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
