// Package config reads client configuration from the environment. A .env
// file in the working directory is applied first when present.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	baseURLVar        = "HRSPHERE_BASE_URL"
	requestTimeoutVar = "HRSPHERE_REQUEST_TIMEOUT"
	tokenPathVar      = "HRSPHERE_TOKEN_PATH"
	envVar            = "HRSPHERE_ENV"

	googleClientIDVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretVar = "GOOGLE_CLIENT_SECRET"
	googleRedirectURLVar  = "GOOGLE_REDIRECT_URL"
)

// Config holds the settings needed to construct the SDK.
type Config struct {
	BaseURL        string        // Backend API root, e.g. "https://api.example.com/api"
	RequestTimeout time.Duration // Per-request HTTP timeout
	TokenPath      string        // File path for the durable credential store
	Env            string        // Environment name (e.g. "DEV", "production")
	Google         GoogleConfig
}

// GoogleConfig is the client registration for the Google login flow. Empty
// when Google login is not configured.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Load reads configuration from the environment with sensible defaults.
// A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		BaseURL:        GetEnv(baseURLVar, "http://localhost:8080/api"),
		RequestTimeout: GetEnvAsDuration(requestTimeoutVar, 30*time.Second),
		TokenPath:      GetEnv(tokenPathVar, "./data/credentials.json"),
		Env:            GetEnv(envVar, "DEV"),
		Google: GoogleConfig{
			ClientID:     GetEnv(googleClientIDVar, ""),
			ClientSecret: GetEnv(googleClientSecretVar, ""),
			RedirectURL:  GetEnv(googleRedirectURLVar, ""),
		},
	}
}

// GetEnv returns the environment variable's value, or defaultValue when it
// is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvAsDuration parses the environment variable as a time.Duration,
// falling back to defaultValue on absence or parse failure.
func GetEnvAsDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
