package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the frontend needs.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	UI       UIConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	ui, err := loadUIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Upstream: upstream, UI: ui}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "9000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":9000" or "127.0.0.1:9000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// UpstreamConfig describes the chatbot backend this frontend talks to.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL")), "/")
	if baseURL == "" {
		return UpstreamConfig{}, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("UPSTREAM_TIMEOUT"); err != nil {
		return UpstreamConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return UpstreamConfig{
		BaseURL: baseURL,
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// UIConfig carries page-level settings.
type UIConfig struct {
	BotLogoURL  string
	RevealDelay time.Duration
}

func loadUIConfig() (UIConfig, error) {
	delayMillis := 10
	if override, err := parseOptionalIntEnv("REVEAL_DELAY_MS"); err != nil {
		return UIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return UIConfig{}, fmt.Errorf("REVEAL_DELAY_MS must be positive, got %d", *override)
		}
		delayMillis = *override
	}

	return UIConfig{
		BotLogoURL:  getEnvOrDefault("BOT_LOGO_URL", "/assets/images/bot-logo.svg"),
		RevealDelay: time.Duration(delayMillis) * time.Millisecond,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
