package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/barcoded/internal/fonts"
	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/request"
	"github.com/MeKo-Tech/barcoded/internal/server"
)

var (
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validBatchFormats  = []string{"text", "json", "csv"}
	defaultFontDirs    = []string{"/usr/share/fonts", "/usr/local/share/fonts"}
	errNegativeSetting = errors.New("must be 0 or greater")
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Host:                 "localhost",
			Port:                 8080,
			CORSOrigins:          []string{"*"},
			MaxBodyBytes:         server.DefaultMaxBodyBytes,
			ReadHeaderTimeoutSec: 10,
			ShutdownTimeout:      10,
		},
		Render: RenderConfig{
			Creator:       render.DefaultCreator,
			DefaultPDFDPI: 600,
			MaxPixels:     50_000_000,
		},
		Fonts: FontsConfig{
			Dirs: slices.Clone(defaultFontDirs),
		},
		Batch: BatchConfig{
			Workers:         4,
			OutputDir:       "out",
			Format:          "text",
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("invalid log_level %q: must be one of %s",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("invalid server.max_body_bytes %d: must be greater than 0", s.MaxBodyBytes))
	}
	if s.ReadHeaderTimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("server.read_header_timeout_sec %w", errNegativeSetting))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout %w", errNegativeSetting))
	}
	rl := s.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 || rl.MaxRequestsPerDay < 0 || rl.MaxDataPerDay < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit limits %w", errNegativeSetting))
	}

	r := c.Render
	if r.DefaultPDFDPI < request.MinRasterDPI || r.DefaultPDFDPI > request.MaxRasterDPI {
		errs = append(errs, fmt.Errorf("invalid render.default_pdf_dpi %d: must be between %d and %d",
			r.DefaultPDFDPI, request.MinRasterDPI, request.MaxRasterDPI))
	}
	if r.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("render.max_pixels %w", errNegativeSetting))
	}

	b := c.Batch
	if b.Workers < 1 {
		errs = append(errs, fmt.Errorf("invalid batch.workers %d: must be at least 1", b.Workers))
	}
	if !slices.Contains(validBatchFormats, b.Format) {
		errs = append(errs, fmt.Errorf("invalid batch.format %q: must be one of %s",
			b.Format, strings.Join(validBatchFormats, ", ")))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the log level, with Verbose forcing debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ReadHeaderTimeout returns the server read header timeout.
func (c *Config) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.Server.ReadHeaderTimeoutSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

// ToFontsConfig converts to fonts.Config.
func (c *Config) ToFontsConfig(logger *slog.Logger) fonts.Config {
	return fonts.Config{
		Dirs:          slices.Clone(c.Fonts.Dirs),
		DisableSystem: c.Fonts.DisableSystem,
		Logger:        logger,
	}
}

// ToRenderOptions converts to render.Options using the loaded registry.
func (c *Config) ToRenderOptions(reg *fonts.Registry, logger *slog.Logger) render.Options {
	return render.Options{
		Fonts:         reg,
		Creator:       c.Render.Creator,
		DefaultPDFDPI: c.Render.DefaultPDFDPI,
		MaxPixels:     c.Render.MaxPixels,
		Logger:        logger,
	}
}

// ToServerConfig converts to server.Config.
func (c *Config) ToServerConfig(fontNames []string, logger *slog.Logger) server.Config {
	rl := c.Server.RateLimit
	return server.Config{
		CORSOrigins:  slices.Clone(c.Server.CORSOrigins),
		MaxBodyBytes: c.Server.MaxBodyBytes,
		RateLimit: server.RateLimitConfig{
			Enabled:           rl.Enabled,
			RequestsPerMinute: rl.RequestsPerMinute,
			RequestsPerHour:   rl.RequestsPerHour,
			MaxRequestsPerDay: rl.MaxRequestsPerDay,
			MaxDataPerDay:     rl.MaxDataPerDay,
		},
		WebSocket: c.Server.WebSocket,
		Fonts:     fontNames,
		Logger:    logger,
	}
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
