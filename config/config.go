package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
}

type AppConfig struct {
	Port               string
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads a .env file if present, then builds the configuration from the environment.
func Load() (*Config, bool) {
	fromFile := godotenv.Load() == nil

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8080"),
			CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "jotion"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}, fromFile
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
