package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret is the fallback signing secret used outside production.
const DevJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Seed      SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowOrigins      string
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
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret          string
	TokenTTLHours      int
	BcryptCost         int
	LoginMaxAttempts   int
	LoginWindowMinutes int
}

// RateLimitConfig bounds request rate on the credential endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SeedConfig describes the bootstrap administrator, if any.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8081"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("AUTH_JWT_SECRET", DevJWTSecret),
			TokenTTLHours:      getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 10),
			LoginMaxAttempts:   getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowMinutes: getEnvAsInt("AUTH_LOGIN_WINDOW_MINUTES", 15),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Seed: SeedConfig{
			AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
			AdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
			AdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET must not be empty")
	}
	if c.App.IsProduction() && c.Auth.JWTSecret == DevJWTSecret {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL_HOURS must be positive, got %d", c.Auth.TokenTTLHours)
	}
	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		return errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued identity tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// LoginWindow returns the window over which failed logins are counted.
func (a AuthConfig) LoginWindow() time.Duration {
	if a.LoginWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.LoginWindowMinutes) * time.Minute
}

// Enabled reports whether a bootstrap admin should be ensured.
func (s SeedConfig) Enabled() bool {
	return s.AdminEmail != "" && s.AdminPassword != ""
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
