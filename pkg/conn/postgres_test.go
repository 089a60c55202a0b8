package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConnString(t *testing.T) {
	assert.Equal(t, "postgres://localhost:5432?sslmode=disable", PostgresConfig{}.ConnString())

	cfg := PostgresConfig{
		Host:     "db",
		Port:     6543,
		User:     "trader",
		Password: "secret",
		Database: "bonds",
		Params:   map[string]string{"application_name": "trader"},
	}
	assert.Equal(t, "postgres://trader:secret@db:6543/bonds?application_name=trader&sslmode=disable", cfg.ConnString())
	assert.True(t, cfg.Enabled())

	cfg.DSN = "host=db user=trader"
	assert.Equal(t, "host=db user=trader", cfg.ConnString())
	assert.False(t, PostgresConfig{}.Enabled())
}
