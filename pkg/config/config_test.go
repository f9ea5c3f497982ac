package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 20, cfg.SAT.TimeoutSeconds)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SAT_USERNAME", "123456")
	t.Setenv("SAT_PASSWORD", "secret")
	t.Setenv("SAT_TIMEOUT_SECONDS", "45")
	t.Setenv("APP_ENV", "development")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "123456", cfg.SAT.Username)
	assert.Equal(t, "secret", cfg.SAT.Password)
	assert.Equal(t, 45, cfg.SAT.TimeoutSeconds)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}
