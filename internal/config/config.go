package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret   string
	TokenExpiry time.Duration

	// MaxPageOffset bounds the "after" pagination cursor.
	MaxPageOffset int

	RateLimitLookup time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),
	}

	var err error
	cfg.TokenExpiry, err = time.ParseDuration(getEnv("TOKEN_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRY: %w", err)
	}

	cfg.RateLimitLookup, err = time.ParseDuration(getEnv("RATE_LIMIT_LOOKUP", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOOKUP: %w", err)
	}

	cfg.MaxPageOffset, err = strconv.Atoi(getEnv("MAX_PAGE_OFFSET", "100000"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PAGE_OFFSET: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
