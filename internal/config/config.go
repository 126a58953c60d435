package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	API       APIConfig
	Catalog   CatalogConfig
	Dashboard DashboardConfig
	Server    ServerConfig
	Prefs     PrefsConfig
	Redis     RedisConfig
	Logger    LoggerConfig
}

type APIConfig struct {
	BaseURL            string
	Timeout            time.Duration
	AuthToken          string
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

type CatalogConfig struct {
	Freshness time.Duration
}

// DashboardConfig.RefreshInterval of zero disables background polling.
type DashboardConfig struct {
	RefreshInterval time.Duration
}

type ServerConfig struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// PrefsConfig selects where client-local preferences (dark mode) survive restarts.
type PrefsConfig struct {
	Backend string // sqlite or redis
	Path    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads .env when present and falls back to defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:            getEnv("API_BASE_URL", "http://localhost:8000/api"),
			Timeout:            getEnvDuration("API_TIMEOUT", 10*time.Second),
			AuthToken:          getEnv("AUTH_TOKEN", ""),
			BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Catalog: CatalogConfig{
			Freshness: getEnvDuration("PRODUCTS_FRESHNESS", 5*time.Minute),
		},
		Dashboard: DashboardConfig{
			RefreshInterval: getEnvDuration("DASHBOARD_REFRESH_INTERVAL", 0),
		},
		Server: ServerConfig{
			HTTPPort:        getEnv("HTTP_PORT", "8090"),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Prefs: PrefsConfig{
			Backend: getEnv("PREFS_BACKEND", "sqlite"),
			Path:    getEnv("PREFS_PATH", "./storefront.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// IsDevelopment reports whether verbose console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || getEnvBool("DEBUG", false)
}
