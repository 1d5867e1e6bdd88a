package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// DefaultMaxUploadSize caps uploads at 50 MiB, enforced both at the
// transport layer and in the attachment store.
const DefaultMaxUploadSize = 50 << 20

type Config struct {
	Port          string
	DatabaseDSN   string
	JWTSecret     string
	TokenTTL      time.Duration
	UploadDir     string
	MaxUploadSize int64
	AdminPassword string
	CORSOrigin    string
	Env           string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "file:noticeboard.db")
	cfg.JWTSecret = getEnv("JWT_SECRET", "devjwtsecret")
	cfg.TokenTTL = parseDuration("TOKEN_TTL", 0) // 0 = non-expiring tokens
	cfg.UploadDir = getEnv("UPLOAD_DIR", "./uploads")
	cfg.MaxUploadSize = parseInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "admin123")
	cfg.CORSOrigin = getEnv("CORS_ORIGIN", "*")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
