package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredVars = []string{
	"SHOPIFY_API_KEY",
	"SHOPIFY_API_SECRET",
	"ENCRYPTION_KEY",
	"COOKIE_SECRET",
	"AUTH_PROVIDER_URL",
}

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("SHOPIFY_API_KEY", "api-key")
	t.Setenv("SHOPIFY_API_SECRET", "api-secret")
	t.Setenv("ENCRYPTION_KEY", "encryption-key")
	t.Setenv("COOKIE_SECRET", "cookie-secret")
	t.Setenv("AUTH_PROVIDER_URL", "https://auth.example.com/auth/v1")
}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_URL", "SITE_URL", "MONGODB_URI", "MONGODB_DATABASE", "REDIS_URL",
		"SHOPIFY_SCOPES", "SHOPIFY_API_VERSION", "SHOPIFY_RETRIES", "SHOPIFY_RATE_LIMIT", "SHOPIFY_RATE_BURST",
		"AUTH_PROVIDER_API_KEY", "SYNC_PAGE_SIZE", "SYNC_MAX_PAGES", "SYNC_TIMEOUT", "SYNC_LOCK_TTL",
		"SYNC_LOCK_WAIT", "METRICS_CACHE_TTL", "AT_RISK_WINDOW_DAYS", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingRequiredVarsReportedTogether(t *testing.T) {
	clearOptional(t)
	for _, key := range requiredVars {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	for _, key := range requiredVars {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_SingleMissingVar(t *testing.T) {
	clearOptional(t)
	setRequiredEnvVars(t)
	t.Setenv("COOKIE_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COOKIE_SECRET")
	assert.NotContains(t, err.Error(), "ENCRYPTION_KEY")
}

func TestLoad_DefaultValues(t *testing.T) {
	clearOptional(t)
	setRequiredEnvVars(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.AppURL)
	assert.Equal(t, "http://localhost:3000", cfg.SiteURL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "retentionos", cfg.MongoDatabase)
	assert.Empty(t, cfg.RedisURL)

	assert.Equal(t, "read_customers,read_orders,read_products", cfg.ShopifyScopes)
	assert.Equal(t, 3, cfg.ShopifyRetries)
	assert.Equal(t, 2.0, cfg.ShopifyRateLimit)
	assert.Equal(t, 40, cfg.ShopifyRateBurst)

	assert.Equal(t, 250, cfg.SyncPageSize)
	assert.Equal(t, 0, cfg.SyncMaxPages)
	assert.Equal(t, 5*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SyncLockTTL)
	assert.Equal(t, 30*time.Second, cfg.SyncLockWait)
	assert.Equal(t, 5*time.Minute, cfg.MetricsCacheTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.AtRiskWindow)

	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_Overrides(t *testing.T) {
	clearOptional(t)
	setRequiredEnvVars(t)
	t.Setenv("APP_URL", "https://api.example.com/")
	t.Setenv("SITE_URL", "https://app.example.com/")
	t.Setenv("SYNC_MAX_PAGES", "1")
	t.Setenv("SYNC_TIMEOUT", "90s")
	t.Setenv("SHOPIFY_RATE_LIMIT", "0.5")
	t.Setenv("AT_RISK_WINDOW_DAYS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.AppURL)
	assert.Equal(t, "https://app.example.com", cfg.SiteURL)
	assert.Equal(t, 1, cfg.SyncMaxPages)
	assert.Equal(t, 90*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 0.5, cfg.ShopifyRateLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.AtRiskWindow)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearOptional(t)
	setRequiredEnvVars(t)
	t.Setenv("SYNC_PAGE_SIZE", "many")
	t.Setenv("SYNC_LOCK_WAIT", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.SyncPageSize)
	assert.Equal(t, 30*time.Second, cfg.SyncLockWait)
}

func TestLoad_RejectsLockShorterThanSyncTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		lockTTL string
		wantErr string
	}{
		{name: "unbounded timeout", timeout: "0s", lockTTL: "1m", wantErr: "SYNC_TIMEOUT must be positive"},
		{name: "timeout longer than lock", timeout: "30m", lockTTL: "1m", wantErr: "SYNC_LOCK_TTL (1m0s) must exceed"},
		{name: "no finish slack", timeout: "55s", lockTTL: "1m", wantErr: "must exceed SYNC_TIMEOUT"},
		{name: "lock without expiry", timeout: "30s", lockTTL: "0s", wantErr: "SYNC_LOCK_TTL must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOptional(t)
			setRequiredEnvVars(t)
			t.Setenv("SYNC_TIMEOUT", tt.timeout)
			t.Setenv("SYNC_LOCK_TTL", tt.lockTTL)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_AcceptsLockCoveringTimeoutAndSlack(t *testing.T) {
	clearOptional(t)
	setRequiredEnvVars(t)
	t.Setenv("SYNC_TIMEOUT", "50s")
	t.Setenv("SYNC_LOCK_TTL", "61s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Second, cfg.SyncTimeout)
	assert.Equal(t, 61*time.Second, cfg.SyncLockTTL)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RETENTIONOS_DOTENV_CHECK=loaded\n"), 0o600))
	t.Setenv("RETENTIONOS_DOTENV_CHECK", "")
	os.Unsetenv("RETENTIONOS_DOTENV_CHECK")

	assert.True(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("RETENTIONOS_DOTENV_CHECK"))
	assert.False(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
