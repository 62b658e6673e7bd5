package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"keepnotes/internal/service"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath         string
	APIPort        string
	LogLevel       slog.Level
	LogFormat      string
	AllowedOrigins []string
	CascadePolicy  service.CascadePolicy
	WriteRetries   int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "./data/keepnotes.db"),
		APIPort:        getEnv("API_PORT", "9000"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	policy, err := service.ParseCascadePolicy(getEnv("CASCADE_POLICY", string(service.CascadeBestEffort)))
	if err != nil {
		return nil, fmt.Errorf("CASCADE_POLICY is invalid: %w", err)
	}
	cfg.CascadePolicy = policy

	retries, err := strconv.Atoi(getEnv("WRITE_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("WRITE_RETRIES must be a valid integer: %w", err)
	}
	if retries <= 0 {
		return nil, fmt.Errorf("WRITE_RETRIES must be greater than 0")
	}
	cfg.WriteRetries = retries

	if len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS must list at least one origin")
	}

	return cfg, nil
}

// EnsureDataDir creates the directory holding DBPath if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// NewLogger builds the process logger described by the config.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
