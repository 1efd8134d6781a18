// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Broker kinds accepted by BROKER.
const (
	BrokerMemory   = "memory"
	BrokerRabbitMQ = "rabbitmq"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables and an optional
// .env file in the working directory. Empty variables count as unset.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins defaults to the Vite dev server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Timezone decides what "today" means when trip statuses are derived.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	// CollationLocale orders trip names for the alphabetical sort.
	CollationLocale string `env:"COLLATION_LOCALE" envDefault:"en"`

	Broker      string `env:"BROKER" envDefault:"memory"`
	RabbitMQURL string `env:"RABBITMQ_URL"`

	BlobDir        string `env:"BLOB_DIR" envDefault:"./data/blobs"`
	MaxBodyBytes   int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"536870912"`
}

// Load reads configuration from the environment and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg, env.Options{Environment: setEnviron()}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.Broker == BrokerRabbitMQ && cfg.RabbitMQURL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.Broker != BrokerMemory && cfg.Broker != BrokerRabbitMQ {
		return Config{}, fmt.Errorf("config: BROKER must be %q or %q, got %q", BrokerMemory, BrokerRabbitMQ, cfg.Broker)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	if _, err := language.Parse(cfg.CollationLocale); err != nil {
		return Config{}, fmt.Errorf("config: COLLATION_LOCALE: %w", err)
	}
	if cfg.MaxBodyBytes <= 0 || cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("config: MAX_BODY_BYTES and MAX_UPLOAD_BYTES must be positive")
	}
	return cfg, nil
}

// Location returns the configured timezone. Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Language returns the configured collation locale.
func (c Config) Language() language.Tag {
	return language.Make(c.CollationLocale)
}

// setEnviron returns the process environment without empty variables, so
// that an empty value falls back to the default like an unset one.
func setEnviron() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && v != "" {
			out[k] = v
		}
	}
	return out
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
