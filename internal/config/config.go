package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	AdminUser     string
	AdminPassword string

	// DataDir is the root for file-backed state: the analytics shard
	// directory lives under it, and so does the default sqlite database.
	DataDir string

	// DatabaseURL is either a postgres:// URL or a sqlite file path.
	// Empty means "<DataDir>/chatwidget.db".
	DatabaseURL string

	// RetentionDays is how long analytics shards are kept before the
	// retention worker removes them.
	RetentionDays int

	ListenAddr string

	// CDNBaseURL is the origin embedded into generated widget snippets.
	CDNBaseURL string

	// InternalTenant, when set, makes the telemetry middleware record this
	// service's own API traffic as analytics events for that tenant.
	InternalTenant string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		AdminUser:      getenv("APP_ADMIN_USER", "admin"),
		AdminPassword:  getenv("APP_ADMIN_PASSWORD", "changeme"),
		DataDir:        getenv("APP_DATA_DIR", "data"),
		DatabaseURL:    os.Getenv("APP_DATABASE_URL"),
		ListenAddr:     getenv("APP_LISTEN_ADDR", ":8080"),
		RetentionDays:  90,
		CDNBaseURL:     getenv("APP_CDN_BASE_URL", "http://localhost:8080"),
		InternalTenant: getenv("APP_INTERNAL_TENANT", ""),
	}

	if v := os.Getenv("APP_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.RetentionDays = days
		}
	}

	return cfg
}

// AnalyticsDir is where the per-tenant per-day event shards live.
func (c *Config) AnalyticsDir() string {
	return filepath.Join(c.DataDir, "analytics")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
