package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.HubSpotBaseURL != "https://api.hubapi.com" {
		t.Errorf("unexpected hubspot base url: %s", cfg.HubSpotBaseURL)
	}
	if cfg.HubSpotMaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.HubSpotMaxRetries)
	}
	if cfg.HubSpotRetryBase != 250*time.Millisecond {
		t.Errorf("unexpected retry base delay: %v", cfg.HubSpotRetryBase)
	}
	if cfg.RateLimitMax != 3 {
		t.Errorf("expected rate limit 3, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != time.Hour {
		t.Errorf("expected 1h window, got %v", cfg.RateLimitWindow)
	}
	if cfg.CryptoPhase != "rsa" {
		t.Errorf("expected default crypto phase rsa, got %s", cfg.CryptoPhase)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LEADSTORE_URL", "https://db.example.com/")
	t.Setenv("HUBSPOT_MAX_RETRIES", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")
	t.Setenv("CRYPTO_MIGRATION_PHASE", " PQC ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.LeadStoreURL != "https://db.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.LeadStoreURL)
	}
	if cfg.HubSpotMaxRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.HubSpotMaxRetries)
	}
	if cfg.RateLimitWindow != 30*time.Minute {
		t.Errorf("expected 30m window, got %v", cfg.RateLimitWindow)
	}
	if cfg.CryptoPhase != "pqc" {
		t.Errorf("expected normalized phase pqc, got %q", cfg.CryptoPhase)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HUBSPOT_MAX_RETRIES", "not-a-number")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("REDIS_TLS", "yes-please")

	cfg := Load()

	if cfg.HubSpotMaxRetries != 3 {
		t.Errorf("expected fallback 3 retries, got %d", cfg.HubSpotMaxRetries)
	}
	if cfg.RateLimitWindow != time.Hour {
		t.Errorf("expected fallback 1h window, got %v", cfg.RateLimitWindow)
	}
	if cfg.RedisTLS {
		t.Error("expected redis tls to fall back to false")
	}
}
