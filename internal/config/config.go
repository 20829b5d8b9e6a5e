package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	RedisURL string
	CacheTTL time.Duration

	JWTSecret string
	Port      string
	Env       string
	LogLevel  string

	QRDir         string
	PublicBaseURL string

	// External commerce platform (price/product/inventory sync).
	CommerceBaseURL string
	CommerceTimeout time.Duration

	// Contact-confirmation endpoint hit after a successful check-in.
	ConfirmContactURL string
}

func NewConfigFromEnv() (*Config, error) {
	cacheTTLSecs, _ := strconv.Atoi(getenv("CACHE_TTL_SECONDS", "300"))
	commerceTimeoutSecs, _ := strconv.Atoi(getenv("COMMERCE_TIMEOUT_SECONDS", "10"))

	cfg := &Config{
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "5432"),
		DBUser:    getenv("DB_USER", "postgres"),
		DBPass:    getenv("DB_PASSWORD", "postgres"),
		DBName:    getenv("DB_NAME", "ticketingdb"),
		DBSSLMode: getenv("DB_SSLMODE", "disable"),

		RedisURL: getenv("REDIS_URL", "localhost:6379"),
		CacheTTL: time.Duration(cacheTTLSecs) * time.Second,

		JWTSecret: getenv("JWT_SECRET", ""),
		Port:      getenv("PORT", "3000"),
		Env:       getenv("ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		QRDir:         getenv("QR_DIR", "./uploads/qrcodes"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:3000"),

		CommerceBaseURL: getenv("COMMERCE_BASE_URL", ""),
		CommerceTimeout: time.Duration(commerceTimeoutSecs) * time.Second,

		ConfirmContactURL: getenv("CONFIRM_CONTACT_URL", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
