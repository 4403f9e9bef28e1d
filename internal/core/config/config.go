package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// DefaultWelcomeBanner greets the signed-in user on an empty transcript.
// Rendered as a mustache template with {{email}} available.
const DefaultWelcomeBanner = `Hi {{email}}! How can I help you today?`

type Config struct {
	APIBaseURL            string `toml:"api_base_url" env:"DESKCHAT_API_BASE_URL"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds" env:"DESKCHAT_REQUEST_TIMEOUT_SECONDS"`
	TitleWidth            int    `toml:"title_width" env:"DESKCHAT_TITLE_WIDTH"`
	LogLevel              string `toml:"log_level" env:"DESKCHAT_LOG_LEVEL"`
	WelcomeTemplate       string `toml:"-" env:"-"`
}

// Dir returns the deskchat config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deskchat"), nil
}

// Load reads config from ~/.config/deskchat/ and applies DESKCHAT_*
// environment overrides on top.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:            "http://localhost:8000",
		RequestTimeoutSeconds: 30,
		TitleWidth:            30,
		LogLevel:              "info",
		WelcomeTemplate:       DefaultWelcomeBanner,
	}

	if dir, err := Dir(); err == nil {
		tomlPath := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(tomlPath); err == nil {
			if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
			}
		}

		// If a custom welcome banner exists, use it
		if data, err := os.ReadFile(filepath.Join(dir, "welcome_banner.txt")); err == nil {
			cfg.WelcomeTemplate = strings.TrimSpace(string(data))
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 30
	}
	if cfg.TitleWidth <= 0 {
		cfg.TitleWidth = 30
	}

	return cfg, nil
}

// RequestTimeout returns the per-request timeout for API calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
