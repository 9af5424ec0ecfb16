package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	JWTSecret       string
	ServiceToken    string
	OrderTTL        time.Duration
	SweepInterval   time.Duration
	DefaultCurrency string
	PublicBaseURL   string

	MerchantServiceURL string
	DevTerminals       string // posId:branchId:merchantId,... seed when no registry is configured

	KafkaBrokers string
	KafkaTopic   string

	RedisURL        string
	RateLimit       int
	RateLimitWindow time.Duration

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8085"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ServiceToken:    os.Getenv("SERVICE_TOKEN"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		MerchantServiceURL: os.Getenv("MERCHANT_SERVICE_URL"),
		DevTerminals:       os.Getenv("DEV_TERMINALS"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.lifecycle"),

		RedisURL: os.Getenv("REDIS_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
	}

	var err error
	if cfg.OrderTTL, err = getDurationEnv("ORDER_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDurationEnv("SWEEP_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDurationEnv("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getIntEnv("RATE_LIMIT", 120); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ServiceToken == "" {
		return nil, fmt.Errorf("SERVICE_TOKEN is required")
	}
	if cfg.OrderTTL <= 0 {
		return nil, fmt.Errorf("ORDER_TTL must be positive")
	}
	if cfg.SweepInterval <= 0 || cfg.SweepInterval >= cfg.OrderTTL {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive and well below ORDER_TTL")
	}

	return cfg, nil
}

// HasPostgres reports whether the audit database is configured.
func (c *Config) HasPostgres() bool {
	return c.PostgresUser != "" && c.PostgresPassword != "" && c.PostgresDB != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
