package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the gateway reads from the environment.
// Load is called once in main after godotenv has run.
type Config struct {
	Port            string
	UpstreamBaseURL string
	DashboardURL    string // where the Google callback redirects to

	JWTSecret   string
	DatabaseURL string // empty = in-memory session store

	RedisURL string // empty = in-memory cache
	CacheTTL time.Duration

	RequestTimeout time.Duration
	AllowedOrigins []string

	SendgridAPIKey string
	MailFrom       string
	MailFromName   string
}

func Load() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if allowedOriginsStr != "" {
		allowedOrigins = strings.Split(allowedOriginsStr, ",")
	}

	return &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		UpstreamBaseURL: getEnvOrDefault("CRM_API_URL", "http://localhost:9191"),
		DashboardURL:    getEnvOrDefault("DASHBOARD_URL", "http://localhost:5173/dashboard"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		RequestTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 15000)) * time.Millisecond,
		SendgridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:        getEnvOrDefault("MAIL_FROM", "no-reply@doctor-crm.local"),
		MailFromName:    getEnvOrDefault("MAIL_FROM_NAME", "Doctor CRM"),
		AllowedOrigins:  allowedOrigins,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
