package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	API APIConfig

	PageSize           int
	PickerPageSize     int
	RelationFetchLimit int

	LogLevel slog.Level
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		API: APIConfig{
			BaseURL: getEnv("API_URL", "http://127.0.0.1:3000"),
			Token:   getEnvOrPanic("API_TOKEN"),
			Timeout: timeout,
		},

		PageSize:           getEnvInt("PAGE_SIZE", 10),
		PickerPageSize:     getEnvInt("PICKER_PAGE_SIZE", 5),
		RelationFetchLimit: getEnvInt("RELATION_FETCH_LIMIT", 1000),

		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
