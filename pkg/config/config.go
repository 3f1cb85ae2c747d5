package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Signal providers
	Signals SignalConfig

	// Recommendation service
	Recommend RecommendConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool

	// API rate limit (requests per minute per client, 0 = off)
	RateLimitPerMinute int

	// Origins allowed to open the progress WebSocket ("*" = any)
	AllowedOrigins []string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SignalConfig selects and tunes the signal provider stack
type SignalConfig struct {
	Source          string // mock, postgres, remote
	CatalogPath     string // optional YAML override of the canned catalog
	SimulateLatency bool   // mock provider sleeps to mimic network calls
	RemoteURL       string
	RemoteRPS       float64
	CacheTTL        time.Duration // 0 disables the Redis signal cache
	RefreshSchedule string        // cron expression for the cache refresh job
	BreakerEnabled  bool
}

// RecommendConfig tunes the caller-side recommendation service
type RecommendConfig struct {
	FallbackMode string        // simple, static
	CacheTTL     time.Duration // 0 disables the recommendation cache
}

// Signal source names
const (
	SourceMock     = "mock"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

// Fallback modes
const (
	FallbackSimple = "simple"
	FallbackStatic = "static"
)

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Signals: SignalConfig{
			Source:          getEnv("SIGNAL_SOURCE", SourceMock),
			CatalogPath:     getEnv("SIGNAL_CATALOG_PATH", ""),
			SimulateLatency: getEnvAsBool("SIGNAL_LATENCY", true),
			RemoteURL:       getEnv("SIGNAL_REMOTE_URL", ""),
			RemoteRPS:       getEnvAsFloat("SIGNAL_REMOTE_RPS", 5),
			CacheTTL:        getEnvAsDuration("SIGNAL_CACHE_TTL", "10m"),
			RefreshSchedule: getEnv("SIGNAL_REFRESH_SCHEDULE", "0 */10 * * * *"),
			BreakerEnabled:  getEnvAsBool("SIGNAL_BREAKER_ENABLED", true),
		},

		Recommend: RecommendConfig{
			FallbackMode: getEnv("FALLBACK_MODE", FallbackSimple),
			CacheTTL:     getEnvAsDuration("RECO_CACHE_TTL", "0s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS", "*"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Signals.Source {
	case SourceMock:
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when SIGNAL_SOURCE=postgres")
		}
	case SourceRemote:
		if c.Signals.RemoteURL == "" {
			return fmt.Errorf("SIGNAL_REMOTE_URL is required when SIGNAL_SOURCE=remote")
		}
		if c.Signals.RemoteRPS <= 0 {
			return fmt.Errorf("SIGNAL_REMOTE_RPS must be positive")
		}
	default:
		return fmt.Errorf("SIGNAL_SOURCE must be one of: mock, postgres, remote")
	}

	if c.Recommend.FallbackMode != FallbackSimple && c.Recommend.FallbackMode != FallbackStatic {
		return fmt.Errorf("FALLBACK_MODE must be one of: simple, static")
	}

	return nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
