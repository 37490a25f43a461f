package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"SIGNUP_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SIGNUP_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("SIGNUP_API_URL", "https://activities.example")
	t.Setenv("SIGNUP_HTTP_TIMEOUT", "3s")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.APIURL != "https://activities.example" || cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SlowCall != 500*time.Millisecond || cfg.LogLevel != "warn" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadClient_Invalid(t *testing.T) {
	t.Setenv("SIGNUP_HTTP_TIMEOUT", "-1s")
	if _, err := LoadClient(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestLoadServer(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.JWTSecret != DevJWTSecret {
		t.Errorf("JWTSecret = %q, want dev secret outside production", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 30*time.Minute || cfg.Addr != ":8000" || !cfg.Seed {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadServer_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	if _, err := LoadServer(); err == nil {
		t.Fatal("expected error without SERVER_JWT_SECRET")
	}

	t.Setenv("SERVER_JWT_SECRET", "s3cret")
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if !cfg.IsProduction() || cfg.JWTSecret != "s3cret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadServer_OutboxInterval(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.OutboxInterval != 15*time.Second {
		t.Errorf("OutboxInterval = %v, want 15s", cfg.OutboxInterval)
	}

	t.Setenv("SERVER_OUTBOX_INTERVAL", "0s")
	if _, err := LoadServer(); err == nil {
		t.Error("expected error for zero outbox interval")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}
