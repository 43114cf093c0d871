package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "rps:notifications", cfg.NotificationStream)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.ImpersonationTTL)
	assert.Equal(t, 4*time.Hour, cfg.RestoreTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "rps", DBPort: "5432"}
	assert.Contains(t, c.PostgresDSN(), "host=db user=u password=p dbname=rps port=5432")
}
