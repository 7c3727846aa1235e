// Package config provides environment configuration for the chat widget.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the widget client and dev server.
type Config struct {
	// Backend API
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration
	StreamTimeout  time.Duration

	// Chat behavior
	HistoryWindow  int
	MaxInputLength int
	MaxMessages    int
	StreamEnabled  bool

	// Local state
	StatePath string

	// Dev server
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Backend API
		APIBaseURL:     getEnv("CHAT_API_BASE_URL", "http://localhost:8080/api"),
		APIToken:       getEnv("CHAT_API_TOKEN", ""),
		RequestTimeout: getDurationEnv("CHAT_REQUEST_TIMEOUT", 30*time.Second),
		StreamTimeout:  getDurationEnv("CHAT_STREAM_TIMEOUT", 2*time.Minute),

		// Chat behavior
		HistoryWindow:  getIntEnv("CHAT_HISTORY_WINDOW", 10),
		MaxInputLength: getIntEnv("CHAT_MAX_INPUT_LENGTH", 4000),
		MaxMessages:    getIntEnv("CHAT_MAX_MESSAGES", 200),
		StreamEnabled:  getBoolEnv("CHAT_STREAM_ENABLED", true),

		// Local state
		StatePath: getEnv("CHAT_STATE_PATH", defaultStatePath()),

		// Dev server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		RateLimitRequests:  getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "widget-state.db"
	}
	return dir + "/urbansetu-chat/state.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
