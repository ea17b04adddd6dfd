package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:              "8081",
		SQLiteDBPath:      "./data/finch.db",
		DataBackend:       "memory",
		JWTSecret:         strings.Repeat("s", 32),
		AccessTokenExpiry: 24 * time.Hour,
		SessionCookieName: "finch_session",
		AMQPExchange:      "finch",
		AMQPQueue:         "settings_events",
		DefaultLocale:     "en-US",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("default port = %s, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("default backend = %s, want memory", cfg.DataBackend)
	}
	if cfg.SessionCookieName != "finch_session" {
		t.Errorf("default cookie name = %s", cfg.SessionCookieName)
	}
	if cfg.AccessTokenExpiry != 24*time.Hour {
		t.Errorf("default token expiry = %s, want 24h", cfg.AccessTokenExpiry)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", cfg.DataBackend)
	}
	if cfg.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("token expiry = %s, want 15m", cfg.AccessTokenExpiry)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "nope" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"short expiry", func(c *Config) { c.AccessTokenExpiry = time.Second }, "too short"},
		{"sqlite without path", func(c *Config) { c.DataBackend = "sqlite"; c.SQLiteDBPath = "" }, "SQLITE_DB_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.JWTSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("Validate() should report all problems, got: %v", err)
	}
}
