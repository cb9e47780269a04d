package config

import (
	"os"
	"time"
)

const (
	// Idempotency cache
	IdempotencyTTL           = 24 * time.Hour
	IdempotencySweepInterval = 1 * time.Hour

	// Per-connection outbound buffer
	SendBufferSize = 256
)

// Config holds the process-level settings read from the environment.
type Config struct {
	Addr          string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
}

// Load reads the configuration from environment variables, applying local
// development defaults for everything except the JWT secret.
func Load() *Config {
	return &Config{
		Addr:          getEnv("ADDR", ":8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=dmchat port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
