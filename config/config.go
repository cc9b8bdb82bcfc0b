package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	DatabaseURL string
	DBLogLevel  string
	DBMaxOpen   int
	DBMaxIdle   int

	CORSOrigins []string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	MaxImageBytes  int64

	AuthJWTSecret      string
	AuthGoogleClientID string

	LowStockThreshold    int
	LowStockScanInterval time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return Config{}, fmt.Errorf("parse PORT: %w", err)
	}
	maxOpen, err := getEnvInt("DB_MAX_OPEN_CONNS", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getEnvInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	maxImage, err := getEnvInt("MAX_IMAGE_BYTES", 5*1024*1024)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_IMAGE_BYTES: %w", err)
	}
	threshold, err := getEnvInt("LOW_STOCK_THRESHOLD", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOW_STOCK_THRESHOLD: %w", err)
	}
	interval, err := getEnvDuration("LOW_STOCK_SCAN_INTERVAL", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOW_STOCK_SCAN_INTERVAL: %w", err)
	}

	cfg := Config{
		Port:                 port,
		DatabaseURL:          databaseURL(),
		DBLogLevel:           getEnv("DB_LOG_LEVEL", "warn"),
		DBMaxOpen:            maxOpen,
		DBMaxIdle:            maxIdle,
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		SupabaseURL:          strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:          getEnv("SUPABASE_KEY", ""),
		SupabaseBucket:       getEnv("SUPABASE_BUCKET", "uploads"),
		MaxImageBytes:        int64(maxImage),
		AuthJWTSecret:        getEnv("AUTH_JWT_SECRET", ""),
		AuthGoogleClientID:   getEnv("AUTH_GOOGLE_CLIENT_ID", ""),
		LowStockThreshold:    threshold,
		LowStockScanInterval: interval,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StorageEnabled reports whether product images can be uploaded.
func (c Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST/DB_NAME is required")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.LowStockScanInterval < 0 {
		return fmt.Errorf("LOW_STOCK_SCAN_INTERVAL must not be negative")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), name,
		getEnv("DB_PORT", "5432"), getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
