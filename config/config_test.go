package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", StoreDriverMemory)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("JWT_SECRET", " s3cret ")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, _ := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CorsAllowedOrigins)
	assert.Equal(t, StoreDriverMemory, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "5432", cfg.Database.Port)
}
