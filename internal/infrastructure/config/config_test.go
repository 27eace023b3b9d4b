package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"EDUPAY_APP_NAME":                os.Getenv("EDUPAY_APP_NAME"),
		"EDUPAY_APP_ENV":                 os.Getenv("EDUPAY_APP_ENV"),
		"EDUPAY_APP_PORT":                os.Getenv("EDUPAY_APP_PORT"),
		"EDUPAY_DATABASE_HOST":           os.Getenv("EDUPAY_DATABASE_HOST"),
		"EDUPAY_DATABASE_PORT":           os.Getenv("EDUPAY_DATABASE_PORT"),
		"EDUPAY_DATABASE_USER":           os.Getenv("EDUPAY_DATABASE_USER"),
		"EDUPAY_DATABASE_PASSWORD":       os.Getenv("EDUPAY_DATABASE_PASSWORD"),
		"EDUPAY_DATABASE_DBNAME":         os.Getenv("EDUPAY_DATABASE_DBNAME"),
		"EDUPAY_DATABASE_SSLMODE":        os.Getenv("EDUPAY_DATABASE_SSLMODE"),
		"EDUPAY_DATABASE_MAX_OPEN_CONNS": os.Getenv("EDUPAY_DATABASE_MAX_OPEN_CONNS"),
		"EDUPAY_DATABASE_MAX_IDLE_CONNS": os.Getenv("EDUPAY_DATABASE_MAX_IDLE_CONNS"),
		"EDUPAY_JWT_SECRET":              os.Getenv("EDUPAY_JWT_SECRET"),
		"EDUPAY_GATEWAY_KEY_ID":          os.Getenv("EDUPAY_GATEWAY_KEY_ID"),
		"EDUPAY_GATEWAY_WEBHOOK_SECRET":  os.Getenv("EDUPAY_GATEWAY_WEBHOOK_SECRET"),
		"EDUPAY_IDEMPOTENCY_ENABLED":     os.Getenv("EDUPAY_IDEMPOTENCY_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "edupay-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "edupay", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "https://api.razorpay.com/v1", cfg.Gateway.BaseURL)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, "24h0m0s", cfg.Idempotency.TTL.String())
	})

	t.Run("loads values from environment variables with EDUPAY prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("EDUPAY_APP_NAME", "test-app")
		os.Setenv("EDUPAY_APP_PORT", "9000")
		os.Setenv("EDUPAY_DATABASE_HOST", "testdb.local")
		os.Setenv("EDUPAY_DATABASE_PORT", "5433")
		os.Setenv("EDUPAY_GATEWAY_KEY_ID", "rzp_test_abc123")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "rzp_test_abc123", cfg.Gateway.KeyID)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("EDUPAY_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("EDUPAY_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires a strong JWT secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("EDUPAY_APP_ENV", "production")
		os.Setenv("EDUPAY_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("idempotency can be switched off explicitly", func(t *testing.T) {
		clearEnv()
		os.Setenv("EDUPAY_IDEMPOTENCY_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Idempotency.Enabled)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "edupay",
		Password: "p@ss/word",
		DBName:   "edupay",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// special characters in the password are escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
