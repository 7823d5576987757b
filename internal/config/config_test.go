package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "TKT", cfg.Ticket.NumberPrefix)
	assert.Equal(t, 5, cfg.Auth.LoginAttemptsPerMinute)
	assert.Equal(t, time.Minute, cfg.Redis.RoleCacheTTL())
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TICKET_NUMBER_PREFIX", "cmp")
	t.Setenv("ROLE_CACHE_TTL_SECONDS", "0")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "abc")
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "CMP", cfg.Ticket.NumberPrefix)
	assert.Zero(t, cfg.Redis.RoleCacheTTL())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
