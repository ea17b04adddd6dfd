package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"os"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Backend selection
	DataBackend string

	// Auth
	JWTSecret         string
	AccessTokenExpiry time.Duration
	SessionCookieName string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Localization
	DefaultLocale string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finch.db"),
		DataBackend:  getEnv("DATA_BACKEND", "memory"),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		AccessTokenExpiry: getEnvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "finch_session"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finch"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "settings_events"),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en-US"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %s", c.DataBackend, strings.Join(validBackends, ", ")))
	}

	// The JWT secret signs session tokens; a short one is brute-forceable.
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 bytes")
	}

	if c.AccessTokenExpiry < time.Minute {
		errors = append(errors, fmt.Sprintf("access token expiry %s too short: minimum 1m", c.AccessTokenExpiry))
	}

	if c.SQLiteDBPath == "" && c.DataBackend == "sqlite" {
		errors = append(errors, "SQLITE_DB_PATH required for sqlite backend")
	}

	if c.AMQPURL != "" {
		if _, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
