package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Storage.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverDynamoDB)
	t.Setenv("DYNAMO_TABLE", "catalog-test")
	t.Setenv("STORAGE_CACHE_ENABLED", "true")
	t.Setenv("STORAGE_CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverDynamoDB, cfg.Storage.Driver)
	assert.Equal(t, "catalog-test", cfg.Dynamo.Table)
	assert.True(t, cfg.Storage.CacheEnabled)
	assert.Equal(t, 30*time.Second, cfg.Storage.CacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "cassandra")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORAGE_DRIVER")
	})

	t.Run("dynamodb requires table", func(t *testing.T) {
		cfg := &Config{
			Storage: StorageConfig{Driver: DriverDynamoDB},
		}
		require.Error(t, cfg.Validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "trace")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})
}

func TestDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "accessctl", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=accessctl sslmode=disable", db.DSN())

	r := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())
}
