// Package config loads the client configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/learnnova/learnnova-cli/internal/transport"
)

// Config aggregates every setting the client reads at startup.
type Config struct {
	API  APIConfig
	Chat ChatConfig
	Log  LogConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	apiCfg, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{API: apiCfg, Chat: chatCfg, Log: loadLogConfig()}, nil
}

// APIConfig describes how to reach the LearnNova backend.
type APIConfig struct {
	BaseURL       string
	SessionCookie string
	Timeout       time.Duration
}

func loadAPIConfig() (APIConfig, error) {
	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("API_TIMEOUT_SECONDS"); err != nil {
		return APIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return APIConfig{}, fmt.Errorf("API_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return APIConfig{
		// A terminal client has no browser origin to resolve "/api" against,
		// so the default points at the backend's local development address.
		BaseURL:       getEnvOrDefault("API_BASE", "http://localhost:5000/api"),
		SessionCookie: strings.TrimSpace(os.Getenv("SESSION_COOKIE")),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig describes chat streaming and the local thread cache.
type ChatConfig struct {
	StreamMode   transport.Mode
	StateFile    string
	SaveDebounce time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	mode, err := transport.ParseMode(strings.TrimSpace(os.Getenv("CHAT_STREAM_MODE")))
	if err != nil {
		return ChatConfig{}, err
	}

	debounceMillis := 300
	if override, err := parseOptionalIntEnv("CHAT_SAVE_DEBOUNCE_MS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("CHAT_SAVE_DEBOUNCE_MS must be positive, got %d", *override)
		}
		debounceMillis = *override
	}

	stateFile := strings.TrimSpace(os.Getenv("CHAT_STATE_FILE"))
	if stateFile == "" {
		stateFile, err = defaultStateFile()
		if err != nil {
			return ChatConfig{}, err
		}
	}

	return ChatConfig{
		StreamMode:   mode,
		StateFile:    stateFile,
		SaveDebounce: time.Duration(debounceMillis) * time.Millisecond,
	}, nil
}

func defaultStateFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for CHAT_STATE_FILE: %w", err)
	}
	return filepath.Join(home, ".learnnova", "threads.json"), nil
}

// LogConfig describes how the CLI logger is built.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		// Logs share the terminal with streamed chat output, so anything
		// below warn stays quiet unless asked for.
		Level:  getEnvOrDefault("LOG_LEVEL", "warn"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

// Build constructs the zap logger described by the config. Logs go to stderr
// so they never interleave with chat output on stdout.
func (c LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Level, err)
	}

	var cfg zap.Config
	switch c.Format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (want console or json)", c.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
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
