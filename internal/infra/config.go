package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	JWTSecret            string
	GeoIPDBPath          string
	AgreementStoragePath string
	PaygateBaseURL       string
	PaygateAPIKey        string
	PlatformMaxInvest    decimal.Decimal
	DefaultLocale        string
	AllowedOrigins       []string
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
	WorkerPollInterval   time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		GeoIPDBPath:          os.Getenv("GEOIP_DB_PATH"),
		AgreementStoragePath: getEnv("AGREEMENT_STORAGE_PATH", "./storage"),
		PaygateBaseURL:       getEnv("PAYGATE_BASE_URL", "https://gateway.example.com"),
		PaygateAPIKey:        os.Getenv("PAYGATE_API_KEY"),
		DefaultLocale:        getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins:       splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		WorkerPollInterval:   time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 5)),
	}

	maxInvest, err := decimal.NewFromString(getEnv("PLATFORM_MAX_INVESTMENT", "100000"))
	if err != nil || !maxInvest.IsPositive() {
		return nil, fmt.Errorf("PLATFORM_MAX_INVESTMENT must be a positive amount")
	}
	cfg.PlatformMaxInvest = maxInvest

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
