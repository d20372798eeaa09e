package database

import (
	"testing"

	"jotion/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		User:     "jotion",
		Password: "p@ss word",
		Host:     "db",
		Port:     "5432",
		Name:     "jotion",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://jotion:p%40ss%20word@db:5432/jotion?sslmode=disable", dsn)
}
