package config

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/MeKo-Tech/barcoded/internal/server"
)

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != server.DefaultMaxBodyBytes {
		t.Errorf("Expected max_body_bytes %d, got %d", server.DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
	}
	if cfg.Render.DefaultPDFDPI != 600 {
		t.Errorf("Expected default_pdf_dpi 600, got %d", cfg.Render.DefaultPDFDPI)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Expected batch workers 4, got %d", cfg.Batch.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default configuration should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server.port"},
		{"body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeout = -1 }, "server.shutdown_timeout must be 0 or greater"},
		{"negative rate", func(c *Config) { c.Server.RateLimit.RequestsPerHour = -1 }, "server.rate_limit"},
		{"pdf dpi", func(c *Config) { c.Render.DefaultPDFDPI = 10 }, "render.default_pdf_dpi"},
		{"max pixels", func(c *Config) { c.Render.MaxPixels = -1 }, "render.max_pixels"},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"batch format", func(c *Config) { c.Batch.Format = "xml" }, "batch.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Batch.Workers = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "batch.workers") {
		t.Errorf("Expected both errors, got %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    slog.Level
	}{
		{"debug", false, slog.LevelDebug},
		{"info", false, slog.LevelInfo},
		{"WARN", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.level, Verbose: tt.verbose}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q, verbose=%v) = %v, want %v", tt.level, tt.verbose, got, tt.want)
		}
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9000
	cfg.Server.CORSOrigins = []string{"https://example.com"}
	cfg.Server.WebSocket = true
	cfg.Server.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMinute: 5}
	cfg.Fonts.DisableSystem = true

	if got := cfg.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %s", got)
	}
	if got := cfg.ShutdownTimeout().Seconds(); got != 10 {
		t.Errorf("ShutdownTimeout() = %vs", got)
	}

	sc := cfg.ToServerConfig([]string{"Go"}, nil)
	if !sc.WebSocket || !sc.RateLimit.Enabled || sc.RateLimit.RequestsPerMinute != 5 {
		t.Errorf("Unexpected server config: %+v", sc)
	}
	if len(sc.CORSOrigins) != 1 || sc.CORSOrigins[0] != "https://example.com" {
		t.Errorf("Unexpected CORS origins: %v", sc.CORSOrigins)
	}

	fc := cfg.ToFontsConfig(nil)
	if !fc.DisableSystem || len(fc.Dirs) != len(cfg.Fonts.Dirs) {
		t.Errorf("Unexpected fonts config: %+v", fc)
	}

	ro := cfg.ToRenderOptions(nil, nil)
	if ro.DefaultPDFDPI != 600 || ro.Creator != "barcoded" || ro.MaxPixels != cfg.Render.MaxPixels {
		t.Errorf("Unexpected render options: %+v", ro)
	}
}

func TestYAML(t *testing.T) {
	cfg := DefaultConfig()
	out, err := cfg.YAML()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"log_level: info", "port: 8080", "default_pdf_dpi: 600", "format: text"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}
