package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Site identity used for CSRF origin checks on form submissions.
	SiteHost string

	// Lead data backend (REST contract: POST array insert, PATCH id-eq update).
	LeadStoreURL        string
	LeadStoreServiceKey string

	// HubSpot CRM sync.
	HubSpotBaseURL       string
	HubSpotToken         string
	HubSpotMaxRetries    int
	HubSpotRetryBase     time.Duration
	HubSpotRetryMaxDelay time.Duration

	// Submission rate limiting.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Redis counter store (optional; in-memory fallback when unset).
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Tenant secret envelopes.
	DatabaseURL     string
	MasterKey       string // base64-encoded 32-byte key
	CryptoPhase     string // rsa | hybrid | pqc
	AdminJWTSecret  string
	HTTPGuardRate   float64
	HTTPGuardBurst  int
	CORSOrigins     []string
	HoneypotEnabled bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		SiteHost: getEnv("SITE_HOST", ""),

		LeadStoreURL:        strings.TrimRight(getEnv("LEADSTORE_URL", ""), "/"),
		LeadStoreServiceKey: getEnv("LEADSTORE_SERVICE_ROLE_KEY", ""),

		HubSpotBaseURL:       strings.TrimRight(getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"), "/"),
		HubSpotToken:         getEnv("HUBSPOT_PRIVATE_APP_TOKEN", ""),
		HubSpotMaxRetries:    getEnvAsInt("HUBSPOT_MAX_RETRIES", 3),
		HubSpotRetryBase:     getEnvAsDuration("HUBSPOT_RETRY_BASE_DELAY", 250*time.Millisecond),
		HubSpotRetryMaxDelay: getEnvAsDuration("HUBSPOT_RETRY_MAX_DELAY", 2*time.Second),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 3),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MasterKey:       getEnv("SECRETS_MASTER_KEY", ""),
		CryptoPhase:     strings.ToLower(strings.TrimSpace(getEnv("CRYPTO_MIGRATION_PHASE", "rsa"))),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		HTTPGuardRate:   getEnvAsFloat("HTTP_GUARD_RATE", 5),
		HTTPGuardBurst:  getEnvAsInt("HTTP_GUARD_BURST", 20),
		CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
		HoneypotEnabled: getEnvAsBool("HONEYPOT_ENABLED", true),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
