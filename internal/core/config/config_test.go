package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL == "" {
		t.Error("Load() returned empty API base URL")
	}
	if cfg.RequestTimeout() <= 0 {
		t.Errorf("RequestTimeout() = %v, want positive", cfg.RequestTimeout())
	}
	if cfg.TitleWidth <= 0 {
		t.Errorf("TitleWidth = %d, want positive", cfg.TitleWidth)
	}
	if cfg.WelcomeTemplate == "" {
		t.Error("Load() returned empty welcome template")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DESKCHAT_API_BASE_URL", "https://chat.example.com/api")
	t.Setenv("DESKCHAT_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("DESKCHAT_TITLE_WIDTH", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://chat.example.com/api" {
		t.Errorf("APIBaseURL = %q, want env override", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want 5s", cfg.RequestTimeout())
	}
	if cfg.TitleWidth != 25 {
		t.Errorf("TitleWidth = %d, want 25", cfg.TitleWidth)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("DESKCHAT_REQUEST_TIMEOUT_SECONDS", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		t.Errorf("RequestTimeoutSeconds = %d, want fallback to default", cfg.RequestTimeoutSeconds)
	}
}
