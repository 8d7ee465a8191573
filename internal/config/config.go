// Package config loads process configuration from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables always win over it. Load is called once at startup
// and the returned Config is treated as immutable.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the APP_ENV value that hides error details from clients.
const EnvProduction = "production"

// Config holds every tunable the server reads at startup.
type Config struct {
	// Server
	Port        int
	Environment string

	// Database
	DBPath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// AI providers. An empty key disables that provider.
	GeminiAPIKey    string
	GeminiModel     string
	GroqAPIKey      string
	GroqModel       string
	GroqEndpoint    string
	ProviderTimeout time.Duration

	// Rate limit on /api/ai/*, requests per user per minute.
	AIRateLimit int

	// Session cache. An empty URL uses the no-op cache.
	RedisURL        string
	SessionCacheTTL time.Duration

	// Profile images. UPLOAD_DIR defaults to ./uploads; a Config built with
	// no UploadDir has no upload route.
	UploadDir      string
	UploadMaxBytes int64

	// Maintenance. Zero disables the periodic sweep.
	OrphanSweepInterval time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Load reads .env (if any) and the environment. It fails listing every
// required variable that is unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("config: required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvInt("PORT", 8000)
	cfg.Environment = getEnvString("APP_ENV", "development")
	cfg.DBPath = getEnvString("DB_PATH", "data/crackbano.db")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-1.5-flash-latest")
	cfg.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	cfg.GroqModel = getEnvString("GROQ_MODEL", "llama-3.3-70b-versatile")
	cfg.GroqEndpoint = getEnvString("GROQ_ENDPOINT", "https://api.groq.com/openai/v1/chat/completions")
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second)
	cfg.AIRateLimit = getEnvInt("AI_RATE_LIMIT", 30)

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.SessionCacheTTL = getEnvDuration("SESSION_CACHE_TTL", 10*time.Minute)
	cfg.OrphanSweepInterval = getEnvDuration("ORPHAN_SWEEP_INTERVAL", time.Hour)

	cfg.UploadDir = getEnvString("UPLOAD_DIR", "uploads")
	cfg.UploadMaxBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20))

	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS",
		[]string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"})

	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "text")

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", cfg.Port)
	}
	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
