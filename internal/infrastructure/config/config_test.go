package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"UCRM_APP_NAME":             os.Getenv("UCRM_APP_NAME"),
		"UCRM_APP_ENV":              os.Getenv("UCRM_APP_ENV"),
		"UCRM_APP_PORT":             os.Getenv("UCRM_APP_PORT"),
		"UCRM_DATABASE_HOST":        os.Getenv("UCRM_DATABASE_HOST"),
		"UCRM_DATABASE_PORT":        os.Getenv("UCRM_DATABASE_PORT"),
		"UCRM_DATABASE_PASSWORD":    os.Getenv("UCRM_DATABASE_PASSWORD"),
		"UCRM_DATABASE_SSLMODE":     os.Getenv("UCRM_DATABASE_SSLMODE"),
		"UCRM_JWT_SECRET":           os.Getenv("UCRM_JWT_SECRET"),
		"UCRM_JWT_TOKEN_EXPIRATION": os.Getenv("UCRM_JWT_TOKEN_EXPIRATION"),
		"UCRM_LOG_LEVEL":            os.Getenv("UCRM_LOG_LEVEL"),
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

	t.Run("loads defaults when nothing is configured", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ucrm-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ucrm", cfg.Database.DBName)
		assert.Equal(t, 8*time.Hour, cfg.JWT.TokenExpiration)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("UCRM_APP_PORT", "9090")
		os.Setenv("UCRM_DATABASE_HOST", "db.internal")
		os.Setenv("UCRM_JWT_TOKEN_EXPIRATION", "30m")
		os.Setenv("UCRM_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 30*time.Minute, cfg.JWT.TokenExpiration)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("production requires a jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("UCRM_APP_ENV", "production")
		os.Setenv("UCRM_DATABASE_PASSWORD", "secret")
		os.Setenv("UCRM_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects a short jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("UCRM_APP_ENV", "production")
		os.Setenv("UCRM_DATABASE_PASSWORD", "secret")
		os.Setenv("UCRM_DATABASE_SSLMODE", "require")
		os.Setenv("UCRM_JWT_SECRET", "too-short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 characters")
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss/word",
		DBName:   "ucrm",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password survive URL encoding
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
