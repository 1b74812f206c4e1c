// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application settings. It is read once at startup.
type Config struct {
	// Server
	Port    string
	AppURL  string
	SiteURL string

	// Storage
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	// Shopify app
	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyScopes     string
	ShopifyAPIVersion string
	ShopifyRetries    int
	ShopifyRateLimit  float64
	ShopifyRateBurst  int

	// Secrets
	EncryptionKey string
	CookieSecret  string

	// Auth provider
	AuthProviderURL    string
	AuthProviderAPIKey string

	// Sync
	SyncPageSize int
	SyncMaxPages int
	SyncTimeout  time.Duration
	SyncLockTTL  time.Duration
	SyncLockWait time.Duration

	// Metrics
	MetricsCacheTTL time.Duration
	AtRiskWindow    time.Duration

	CORSAllowedOrigins []string
	LogLevel           string
	CookieSecure       bool
}

// LoadDotEnv reads a .env file into the environment when one exists.
// It reports whether a file was loaded.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads Config from the environment. All missing required variables
// are reported in a single error.
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.ShopifyAPIKey = required("SHOPIFY_API_KEY")
	cfg.ShopifyAPISecret = required("SHOPIFY_API_SECRET")
	cfg.EncryptionKey = required("ENCRYPTION_KEY")
	cfg.CookieSecret = required("COOKIE_SECRET")
	cfg.AuthProviderURL = required("AUTH_PROVIDER_URL")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvString("PORT", "8080")
	cfg.AppURL = strings.TrimRight(getEnvString("APP_URL", "http://localhost:"+cfg.Port), "/")
	cfg.SiteURL = strings.TrimRight(getEnvString("SITE_URL", "http://localhost:3000"), "/")

	cfg.MongoURI = getEnvString("MONGODB_URI", "mongodb://localhost:27017")
	cfg.MongoDatabase = getEnvString("MONGODB_DATABASE", "retentionos")
	cfg.RedisURL = getEnvString("REDIS_URL", "")

	cfg.ShopifyScopes = getEnvString("SHOPIFY_SCOPES", "read_customers,read_orders,read_products")
	cfg.ShopifyAPIVersion = getEnvString("SHOPIFY_API_VERSION", "2024-10")
	cfg.ShopifyRetries = getEnvInt("SHOPIFY_RETRIES", 3)
	cfg.ShopifyRateLimit = getEnvFloat("SHOPIFY_RATE_LIMIT", 2)
	cfg.ShopifyRateBurst = getEnvInt("SHOPIFY_RATE_BURST", 40)

	cfg.AuthProviderAPIKey = getEnvString("AUTH_PROVIDER_API_KEY", "")

	cfg.SyncPageSize = getEnvInt("SYNC_PAGE_SIZE", 250)
	cfg.SyncMaxPages = getEnvInt("SYNC_MAX_PAGES", 0)
	cfg.SyncTimeout = getEnvDuration("SYNC_TIMEOUT", 5*time.Minute)
	cfg.SyncLockTTL = getEnvDuration("SYNC_LOCK_TTL", 10*time.Minute)
	cfg.SyncLockWait = getEnvDuration("SYNC_LOCK_WAIT", 30*time.Second)

	cfg.MetricsCacheTTL = getEnvDuration("METRICS_CACHE_TTL", 5*time.Minute)
	cfg.AtRiskWindow = time.Duration(getEnvInt("AT_RISK_WINDOW_DAYS", 90)) * 24 * time.Hour

	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{cfg.SiteURL})
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CookieSecure = strings.HasPrefix(cfg.AppURL, "https://")

	if err := cfg.validateSyncBounds(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SyncFinishSlack is the time a run may spend writing its terminal state
// after SYNC_TIMEOUT fires. The lock must outlive both.
const SyncFinishSlack = 10 * time.Second

func (c *Config) validateSyncBounds() error {
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive, got %s", c.SyncTimeout)
	}
	if c.SyncLockTTL <= 0 {
		return fmt.Errorf("SYNC_LOCK_TTL must be positive, got %s", c.SyncLockTTL)
	}
	if c.SyncTimeout+SyncFinishSlack >= c.SyncLockTTL {
		return fmt.Errorf("SYNC_LOCK_TTL (%s) must exceed SYNC_TIMEOUT (%s) plus %s", c.SyncLockTTL, c.SyncTimeout, SyncFinishSlack)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
