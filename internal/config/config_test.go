package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "SEEDVC_RUNNER_URL", "SEEDVC_RUNNER_TIMEOUT", "VOICECLONE_TEMP_DIR", "SEEDVC_USE_MOCK"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RunnerURL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default runner URL, got %s", cfg.RunnerURL)
	}
	if cfg.RunnerTimeout != 10*time.Minute {
		t.Errorf("Expected default timeout 10m, got %s", cfg.RunnerTimeout)
	}
	if cfg.TempDir == "" {
		t.Error("Expected a temp dir default")
	}
	if cfg.UseMockConverter {
		t.Error("Expected mock converter off by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SEEDVC_RUNNER_URL", "http://gpu-box:8000")
	t.Setenv("SEEDVC_RUNNER_TIMEOUT", "30s")
	t.Setenv("SEEDVC_USE_MOCK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if cfg.RunnerURL != "http://gpu-box:8000" {
		t.Errorf("Expected runner URL http://gpu-box:8000, got %s", cfg.RunnerURL)
	}
	if cfg.RunnerTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %s", cfg.RunnerTimeout)
	}
	if !cfg.UseMockConverter {
		t.Error("Expected mock converter enabled")
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEDVC_RUNNER_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("Expected an error for invalid timeout")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEDVC_RUNNER_TIMEOUT", "-5s")

	if _, err := Load(); err == nil {
		t.Error("Expected an error for negative timeout")
	}
}

func TestLoadRejectsInvalidMockFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEDVC_USE_MOCK", "maybe")

	if _, err := Load(); err == nil {
		t.Error("Expected an error for invalid mock flag")
	}
}
