package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "hello")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "hello"},
		{"${TEST_VAR:default}", "hello"},
		{"${UNSET_VAR:fallback}", "fallback"},
		{"${UNSET_VAR}", ""},
		{"no vars here", "no vars here"},
		{"prefix-${TEST_VAR}-suffix", "prefix-hello-suffix"},
		{"${BACKEND_URL_UNSET:http://localhost:5001}", "http://localhost:5001"},
	}

	for _, tt := range tests {
		got := expandEnvVars(tt.input)
		if got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  host: "0.0.0.0"
  port: 9999
`)

	var cfg Config
	if err := LoadFile(filepath.Join(dir, FileName), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
}

func TestLoadFile_WithEnvVars(t *testing.T) {
	t.Setenv("TEST_PORT", "7777")

	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  host: "${TEST_HOST:127.0.0.1}"
  port: ${TEST_PORT}
`)

	var cfg Config
	if err := LoadFile(filepath.Join(dir, FileName), &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1 (default), got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server: [unterminated")

	var cfg Config
	if err := LoadFile(filepath.Join(dir, FileName), &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoader_OverlaysDefaults(t *testing.T) {
	t.Setenv("TEST_BACKEND", "http://backend.internal:5001")

	dir := t.TempDir()
	writeConfig(t, dir, `
backend:
  base_url: "${TEST_BACKEND}"
  timeout: 5s
  schedule_fallback: true
completion:
  model: "llama3.1:70b"
`)

	l := NewLoader(dir, testLogger())
	if err := l.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	b := l.Backend()
	if b.BaseURL != "http://backend.internal:5001" {
		t.Errorf("expected expanded base url, got %s", b.BaseURL)
	}
	if b.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", b.Timeout)
	}
	if !b.ScheduleFallback {
		t.Error("expected schedule fallback enabled")
	}
	// Untouched keys keep their defaults.
	if b.StudentsLimit != 10 {
		t.Errorf("expected default students limit 10, got %d", b.StudentsLimit)
	}

	c := l.Config().Completion
	if c.Model != "llama3.1:70b" {
		t.Errorf("expected overridden model, got %s", c.Model)
	}
	if c.Temperature != 0.2 {
		t.Errorf("expected default temperature 0.2, got %v", c.Temperature)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	l := NewLoader(t.TempDir(), testLogger())
	if err := l.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := l.Config()
	if cfg.Backend.BaseURL != "http://localhost:5001" {
		t.Errorf("expected default backend url, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.ScheduleFallback {
		t.Error("schedule fallback should default to off")
	}
	if cfg.Completion.Model != "llama3.1:8b" {
		t.Errorf("expected default model, got %s", cfg.Completion.Model)
	}
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ratelimit:\n  requests_per_minute: 10\n")

	l := NewLoader(dir, testLogger())
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 4)
	l.OnReload(func() { reloaded <- struct{}{} })
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	writeConfig(t, dir, "ratelimit:\n  requests_per_minute: 99\n")

	// A single write can surface as several events; wait for the final content.
	deadline := time.After(5 * time.Second)
	for l.RateLimit().RequestsPerMinute != 99 {
		select {
		case <-reloaded:
		case <-deadline:
			t.Fatalf("timed out waiting for reload, rpm = %d", l.RateLimit().RequestsPerMinute)
		}
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "assistant", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/assistant?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
}
