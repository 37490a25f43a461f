// Package config loads client and server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret signs tokens outside production when no secret is configured.
const DevJWTSecret = "dev-only-signing-secret-change-me"

// Client configures the terminal client.
type Client struct {
	APIURL      string        `env:"SIGNUP_API_URL" envDefault:"http://localhost:8000"`
	StatePath   string        `env:"SIGNUP_STATE_PATH"`
	HTTPTimeout time.Duration `env:"SIGNUP_HTTP_TIMEOUT" envDefault:"0s"`
	SlowCall    time.Duration `env:"SIGNUP_SLOW_CALL" envDefault:"500ms"`
	LogLevel    string        `env:"SIGNUP_LOG_LEVEL" envDefault:"warn"`
}

// Server configures the activities API server.
type Server struct {
	Addr        string        `env:"SERVER_ADDR" envDefault:":8000"`
	Env         string        `env:"SERVER_ENV" envDefault:"development"`
	DBPath      string        `env:"SERVER_DB_PATH" envDefault:"signup.db"`
	JWTSecret   string        `env:"SERVER_JWT_SECRET"`
	TokenTTL    time.Duration `env:"SERVER_TOKEN_TTL" envDefault:"30m"`
	LogLevel    string        `env:"SERVER_LOG_LEVEL" envDefault:"info"`
	Seed        bool          `env:"SERVER_SEED" envDefault:"true"`
	SlowQuery   time.Duration `env:"SERVER_SLOW_QUERY" envDefault:"100ms"`
	SlowRequest time.Duration `env:"SERVER_SLOW_REQUEST" envDefault:"500ms"`

	LoginRateLimit  int           `env:"SERVER_LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"SERVER_LOGIN_RATE_WINDOW" envDefault:"1m"`

	ResendKey string `env:"SERVER_RESEND_KEY"`
	EmailFrom string `env:"SERVER_EMAIL_FROM" envDefault:"Mergington High School <activities@mergington.edu>"`
	ReplyTo   string `env:"SERVER_REPLY_TO" envDefault:"activities@mergington.edu"`

	OutboxInterval time.Duration `env:"SERVER_OUTBOX_INTERVAL" envDefault:"15s"`
}

// IsProduction reports whether the server runs in production mode.
func (s Server) IsProduction() bool {
	return s.Env == "production"
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadClient parses and validates the client configuration.
func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	if cfg.HTTPTimeout < 0 {
		return Client{}, errors.New("SIGNUP_HTTP_TIMEOUT must not be negative")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

// LoadServer parses and validates the server configuration. Production
// requires an explicit signing secret.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Server{}, errors.New("SERVER_JWT_SECRET is required in production")
		}
		cfg.JWTSecret = DevJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		return Server{}, errors.New("SERVER_TOKEN_TTL must be positive")
	}
	if cfg.LoginRateLimit <= 0 || cfg.LoginRateWindow <= 0 {
		return Server{}, errors.New("login rate limit and window must be positive")
	}
	if cfg.OutboxInterval <= 0 {
		return Server{}, errors.New("SERVER_OUTBOX_INTERVAL must be positive")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
