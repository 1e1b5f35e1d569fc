package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.Mongo.URI)
	assert.Equal(t, "todo_db", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.internal")
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")

	t.Setenv("JWT_SECRET", "prod-secret")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit requests must be positive")

	t.Setenv("RATE_LIMIT_REQUESTS", "-5")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("RATE_LIMIT_REQUESTS", "1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Security.RateLimitRequests)
}
