package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("PLATFORM_MAX_INVESTMENT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PlatformMaxInvest.String() != "100000" {
		t.Fatalf("PlatformMaxInvest = %s, want 100000", cfg.PlatformMaxInvest)
	}
	if cfg.HTTPReadTimeout != 15*time.Second {
		t.Fatalf("HTTPReadTimeout = %s, want 15s", cfg.HTTPReadTimeout)
	}
	if cfg.AgreementStoragePath != "./storage" {
		t.Fatalf("AgreementStoragePath = %q", cfg.AgreementStoragePath)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("missing DATABASE_URL must be rejected")
	}
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("missing JWT_SECRET must be rejected")
	}
}

func TestLoadConfigRejectsBadPlatformMax(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PLATFORM_MAX_INVESTMENT", "not-a-number")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("non-numeric PLATFORM_MAX_INVESTMENT must be rejected")
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PLATFORM_MAX_INVESTMENT", "250000")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PlatformMaxInvest.String() != "250000" {
		t.Fatalf("PlatformMaxInvest = %s, want 250000", cfg.PlatformMaxInvest)
	}
	if cfg.RateLimitPerMin != 5 {
		t.Fatalf("RateLimitPerMin = %d, want 5", cfg.RateLimitPerMin)
	}
}
