package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	WindowDays int

	// Booking backend
	BookingBackendURL   string
	BookingBackendToken string

	// Availability source
	AvailabilityBackendURL string
	SimulateAvailability   bool
	SimulatedRetention     float64
	AvailabilityCacheTTL   time.Duration

	// Redis (availability cache); empty addr disables caching
	RedisAddr     string
	RedisPassword string

	// Widget behaviour
	StatusDisplayTimeout time.Duration
	WidgetSessionTTL     time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		WindowDays: getEnvAsInt("WINDOW_DAYS", 30),

		BookingBackendURL:   getEnv("BOOKING_BACKEND_URL", ""),
		BookingBackendToken: getEnv("BOOKING_BACKEND_TOKEN", ""),

		AvailabilityBackendURL: getEnv("AVAILABILITY_BACKEND_URL", ""),
		SimulateAvailability:   getEnvAsBool("SIMULATE_AVAILABILITY", true),
		SimulatedRetention:     getEnvAsFloat("SIMULATED_RETENTION", 0.7),
		AvailabilityCacheTTL:   getEnvAsDuration("AVAILABILITY_CACHE_TTL", 2*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		StatusDisplayTimeout: getEnvAsDuration("STATUS_DISPLAY_TIMEOUT", 5*time.Second),
		WidgetSessionTTL:     getEnvAsDuration("WIDGET_SESSION_TTL", 30*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
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
