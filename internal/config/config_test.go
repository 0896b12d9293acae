package config

import (
	"testing"
	"time"

	"github.com/learnnova/learnnova-cli/internal/transport"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected default base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 60*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.API.Timeout)
	}
	if cfg.Chat.StreamMode != transport.ModeFetch {
		t.Fatalf("unexpected default stream mode: %q", cfg.Chat.StreamMode)
	}
	if cfg.Chat.SaveDebounce != 300*time.Millisecond {
		t.Fatalf("unexpected default debounce: %v", cfg.Chat.SaveDebounce)
	}
	if cfg.Chat.StateFile == "" {
		t.Fatal("state file default must resolve under the home directory")
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "console" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE", "https://learnnova.app/api")
	t.Setenv("SESSION_COOKIE", "abc123")
	t.Setenv("API_TIMEOUT_SECONDS", "10")
	t.Setenv("CHAT_STREAM_MODE", "sse")
	t.Setenv("CHAT_STATE_FILE", "/tmp/threads.json")
	t.Setenv("CHAT_SAVE_DEBOUNCE_MS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.API.BaseURL != "https://learnnova.app/api" {
		t.Fatalf("API_BASE not applied: %q", cfg.API.BaseURL)
	}
	if cfg.API.SessionCookie != "abc123" {
		t.Fatalf("SESSION_COOKIE not applied: %q", cfg.API.SessionCookie)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("API_TIMEOUT_SECONDS not applied: %v", cfg.API.Timeout)
	}
	if cfg.Chat.StreamMode != transport.ModeSSE {
		t.Fatalf("CHAT_STREAM_MODE not applied: %q", cfg.Chat.StreamMode)
	}
	if cfg.Chat.StateFile != "/tmp/threads.json" {
		t.Fatalf("CHAT_STATE_FILE not applied: %q", cfg.Chat.StateFile)
	}
	if cfg.Chat.SaveDebounce != 50*time.Millisecond {
		t.Fatalf("CHAT_SAVE_DEBOUNCE_MS not applied: %v", cfg.Chat.SaveDebounce)
	}
}

func TestLoadRejectsUnknownStreamMode(t *testing.T) {
	t.Setenv("CHAT_STREAM_MODE", "websocket")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown stream mode")
	}
}

func TestLoadRejectsBadIntegers(t *testing.T) {
	cases := map[string]string{
		"API_TIMEOUT_SECONDS":   "soon",
		"CHAT_SAVE_DEBOUNCE_MS": "-5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLogConfigBuild(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := LogConfig{Level: "info", Format: format}.Build()
		if err != nil {
			t.Fatalf("Build(%s) err: %v", format, err)
		}
		_ = logger.Sync()
	}

	if _, err := (LogConfig{Level: "noisy", Format: "console"}).Build(); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if _, err := (LogConfig{Level: "info", Format: "xml"}).Build(); err == nil {
		t.Fatal("expected error for invalid format")
	}
}
