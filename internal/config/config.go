// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration of the voice clone server.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// RunnerURL is the base URL of the Seed-VC model runner.
	RunnerURL string

	// RunnerTimeout bounds a single conversion round-trip.
	RunnerTimeout time.Duration

	// TempDir is where per-request upload directories are created.
	TempDir string

	// UseMockConverter swaps the runner client for the mock adapter.
	UseMockConverter bool
}

// Load reads configuration from environment variables, applying defaults
// for everything left unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		RunnerURL: getEnv("SEEDVC_RUNNER_URL", "http://127.0.0.1:8000"),
		TempDir:   getEnv("VOICECLONE_TEMP_DIR", os.TempDir()),
	}

	timeout := getEnv("SEEDVC_RUNNER_TIMEOUT", "10m")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid SEEDVC_RUNNER_TIMEOUT %q: %w", timeout, err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("SEEDVC_RUNNER_TIMEOUT must be positive, got %q", timeout)
	}
	cfg.RunnerTimeout = d

	useMock := getEnv("SEEDVC_USE_MOCK", "false")
	b, err := strconv.ParseBool(useMock)
	if err != nil {
		return nil, fmt.Errorf("invalid SEEDVC_USE_MOCK %q: %w", useMock, err)
	}
	cfg.UseMockConverter = b

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
