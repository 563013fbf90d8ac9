package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.False(t, cfg.Auth.SplitForbidden)
	assert.Equal(t, 720, cfg.Journal.RetentionHours)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://taskmanager:@localhost:5432/taskmanager?sslmode=disable", cfg.Database.URL)

	assert.True(t, cfg.JWT.Generated)
	assert.Len(t, cfg.JWT.Secret, 64)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("AUTH_SPLIT_FORBIDDEN", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.True(t, cfg.Auth.SplitForbidden)
	assert.False(t, cfg.JWT.Generated)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{Driver: "mongo"},
		JWT:   JWTConfig{Secret: "x", TTL: time.Hour},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}
