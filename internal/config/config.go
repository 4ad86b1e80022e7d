package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// External matcher service
	MatcherBaseURL string
	MatcherTimeout int // seconds

	// Database (optional; history feed disabled when empty)
	DatabaseURL string

	// Uploads
	MaxUploadMB int

	// Bulk matching
	DefaultMinScore float64

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		MatcherBaseURL:  strings.TrimRight(getEnv("MATCHER_BASE_URL", "http://localhost:8000"), "/"),
		MatcherTimeout:  getEnvInt("MATCHER_TIMEOUT_SECONDS", 60),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MaxUploadMB:     getEnvInt("MAX_UPLOAD_MB", 10),
		DefaultMinScore: getEnvFloat("DEFAULT_MIN_SCORE", 7.0),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins:  splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if !strings.HasPrefix(cfg.MatcherBaseURL, "http://") && !strings.HasPrefix(cfg.MatcherBaseURL, "https://") {
		return nil, fmt.Errorf("MATCHER_BASE_URL must be an http(s) URL, got %q", cfg.MatcherBaseURL)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.DefaultMinScore < 0 {
		return nil, fmt.Errorf("DEFAULT_MIN_SCORE must not be negative, got %v", cfg.DefaultMinScore)
	}

	return cfg, nil
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
