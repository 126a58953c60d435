package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PRODUCTS_FRESHNESS", "")
	t.Setenv("PREFS_BACKEND", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.Freshness)
	assert.Equal(t, "sqlite", cfg.Prefs.Backend)
	assert.Equal(t, 5, cfg.API.BreakerMaxFailures)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example.com/api")
	t.Setenv("PRODUCTS_FRESHNESS", "90s")
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PREFS_BACKEND", "redis")

	cfg := Load()

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Catalog.Freshness)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "redis", cfg.Prefs.Backend)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_DURATION", time.Minute))
}

func TestLoad_DashboardPollingDisabledByDefault(t *testing.T) {
	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "")
	assert.Zero(t, Load().Dashboard.RefreshInterval)

	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "1m")
	assert.Equal(t, time.Minute, Load().Dashboard.RefreshInterval)
}
