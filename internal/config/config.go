package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App    AppConfig
	API    APIConfig
	State  StateConfig
	Logger LoggerConfig
}

// AppConfig controls application level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig holds backend connection values.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StateConfig locates the durable client state (the stored token).
type StateConfig struct {
	Dir      string
	TokenKey string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	stateDir := os.Getenv("ISSUETRACK_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".config", "issuetrack")
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("ISSUETRACK_APP_NAME", "issuetrack"),
			Env:     getEnv("ISSUETRACK_ENV", "development"),
			Version: getEnv("ISSUETRACK_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:        getEnv("ISSUETRACK_API_URL", "http://localhost:5000"),
			TimeoutSeconds: getEnvAsInt("ISSUETRACK_HTTP_TIMEOUT_SECONDS", 0),
		},
		State: StateConfig{
			Dir:      stateDir,
			TokenKey: getEnv("ISSUETRACK_TOKEN_KEY", "token"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}

	return cfg, nil
}

// Timeout returns the configured HTTP timeout; zero means no timeout.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
