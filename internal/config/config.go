package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Settings     SettingsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	ExtendedTokenTTLMinutes int
	PasswordResetTTLMinutes int
	BcryptCost              int
	TermsVersion            string
	DemoAccountEnabled      bool
	DemoEmail               string
	DemoPassword            string
}

// RateLimitConfig configures the per-client fixed-window limiters.
type RateLimitConfig struct {
	Store        string
	AuthLimit    int
	AuthWindow   time.Duration
	ReportLimit  int
	ReportWindow time.Duration
	GlobalLimit  int
	GlobalWindow time.Duration
}

// SettingsConfig controls the AppSettings read cache.
type SettingsConfig struct {
	CacheTTL time.Duration
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "marketplace-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 4*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "marketplace-api"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 24*60),
			ExtendedTokenTTLMinutes: getEnvAsInt("AUTH_EXTENDED_TOKEN_TTL_MINUTES", 7*24*60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			TermsVersion:            getEnv("TERMS_VERSION", "1.0"),
			DemoAccountEnabled:      getEnvAsBool("AUTH_DEMO_ACCOUNT_ENABLED", false),
			DemoEmail:               strings.ToLower(os.Getenv("AUTH_DEMO_EMAIL")),
			DemoPassword:            os.Getenv("AUTH_DEMO_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Store:        strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory")),
			AuthLimit:    getEnvAsInt("RATE_LIMIT_AUTH_LIMIT", 10),
			AuthWindow:   getEnvAsDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			ReportLimit:  getEnvAsInt("RATE_LIMIT_REPORT_LIMIT", 20),
			ReportWindow: getEnvAsDuration("RATE_LIMIT_REPORT_WINDOW", time.Minute),
			GlobalLimit:  getEnvAsInt("RATE_LIMIT_GLOBAL_LIMIT", 120),
			GlobalWindow: getEnvAsDuration("RATE_LIMIT_GLOBAL_WINDOW", time.Minute),
		},
		Settings: SettingsConfig{
			CacheTTL: time.Duration(getEnvAsInt("SETTINGS_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Auth.DemoAccountEnabled && (cfg.Auth.DemoEmail == "" || cfg.Auth.DemoPassword == "") {
		return nil, fmt.Errorf("AUTH_DEMO_EMAIL and AUTH_DEMO_PASSWORD are required when AUTH_DEMO_ACCOUNT_ENABLED is set")
	}
	if cfg.RateLimit.Store != "memory" && cfg.RateLimit.Store != "redis" {
		return nil, fmt.Errorf("RATE_LIMIT_STORE must be memory or redis, got %q", cfg.RateLimit.Store)
	}
	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// UsesRedis reports whether limiter counters live in Redis.
func (r RateLimitConfig) UsesRedis() bool {
	return r.Store == "redis"
}

// AccessTokenTTL is the lifetime of password-login credentials.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// ExtendedTokenTTL is the lifetime of credentials issued at registration.
func (a AuthConfig) ExtendedTokenTTL() time.Duration {
	return time.Duration(a.ExtendedTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsDuration accepts Go durations ("90s") or bare milliseconds ("60000").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
