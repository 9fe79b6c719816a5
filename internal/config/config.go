package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	UpstreamURL         string   // Base URL of the Pochi API backend (e.g. https://api.pochi.app)
	Port                string
	Environment         string   // ENV: production, development, etc.
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Host                string   // Raw HOST env (e.g. https://web.pochi.app)
	AllowedHost         string   // Hostname only for strict host check (production only)
	RedisURI            string
	MongoURI            string
	PostgresURI         string
	TokenSecret         string // passphrase for at-rest encryption of stored admin tokens
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Retry policy for upstream calls.
	MaxRetries int
	RetryDelay time.Duration

	// Polling.
	FeedbackPollInterval time.Duration
	FetchTimeout         time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = host
		allowedHost = strings.TrimPrefix(allowedHost, "https://")
		allowedHost = strings.TrimPrefix(allowedHost, "http://")
		if idx := strings.Index(allowedHost, "/"); idx != -1 {
			allowedHost = allowedHost[:idx]
		}
		if idx := strings.Index(allowedHost, ":"); idx != -1 {
			allowedHost = allowedHost[:idx]
		}
		allowedHost = strings.TrimSpace(allowedHost)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		UpstreamURL:         strings.TrimRight(getEnv("UPSTREAM_URL", "http://localhost:7860"), "/"),
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		AllowedOrigins:      allowedOrigins,
		Host:                host,
		AllowedHost:         allowedHost,
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		TokenSecret:         getEnv("TOKEN_SECRET", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		MaxRetries: getEnvInt("UPSTREAM_MAX_RETRIES", 3),
		RetryDelay: time.Duration(getEnvInt("UPSTREAM_RETRY_DELAY_MS", 1000)) * time.Millisecond,

		FeedbackPollInterval: time.Duration(getEnvInt("FEEDBACK_POLL_SECONDS", 90)) * time.Second,
		FetchTimeout:         time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
