package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the development backend.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	JWTSecret   string

	// ChatTimestampFormat selects how chat timestamps are written:
	// "iso" for RFC 3339 strings, "seconds" for {"_seconds","_nanoseconds"}.
	ChatTimestampFormat string

	// CORS origins; empty allows any origin
	AllowedOrigins []string

	// Rate limiting
	RateLimitPerMinute int
	RateLimitWhitelist []string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          getEnv("SQLITE_PATH", "./data/lostfound.db"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		ChatTimestampFormat: getEnv("CHAT_TIMESTAMP_FORMAT", "seconds"),
		AllowedOrigins:      getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitWhitelist:  getEnvList("RATE_LIMIT_WHITELIST"),
	}

	// In production, require database, redis and a real signing secret
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
		if os.Getenv("JWT_SECRET") == "" {
			panic("JWT_SECRET is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ClientConfig holds configuration for the command line client.
type ClientConfig struct {
	BaseURL      string
	Token        string
	UserID       string
	PollInterval time.Duration
	Debug        bool
}

// LoadClient reads client configuration from the environment, loading a
// .env file first if one exists.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		BaseURL:      getEnv("LOSTFOUND_URL", "http://localhost:8080"),
		Token:        os.Getenv("LOSTFOUND_TOKEN"),
		UserID:       os.Getenv("LOSTFOUND_USER"),
		PollInterval: getEnvDuration("LOSTFOUND_POLL_INTERVAL", 5*time.Second),
		Debug:        getEnv("LOSTFOUND_DEBUG", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
