package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Env       string
	LogLevel  string
	LogFormat string

	// GatewayBaseURL selects between the local simulator (development
	// default) and an absolute gateway address (production/override).
	GatewayBaseURL string
	HTTPTimeout    time.Duration

	// Session persistence. When RedisAddr is empty or unreachable the
	// in-memory store is used instead.
	RedisAddr  string
	RedisPass  string
	RedisTLS   bool
	SessionKey string
	SessionTTL time.Duration

	// Booking behaviour.
	RedirectDelay  time.Duration
	SimulatorDelay time.Duration

	// Gateway simulator settings.
	Port      string
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:8080"),
		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPass:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		SessionKey:     getEnv("SESSION_KEY", "patient-portal:session"),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RedirectDelay:  getEnvAsDuration("REDIRECT_DELAY", 2*time.Second),
		SimulatorDelay: getEnvAsDuration("SIMULATOR_DELAY", time.Second),
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-only-secret-change-me"),
		TokenTTL:       getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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
