//nolint:lll
package config

// Config represents the complete configuration for barcoded. It covers all
// commands (serve, render, batch, bench) and is loaded from configuration
// files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Rendering limits and document metadata
	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`

	// Font discovery
	Fonts FontsConfig `mapstructure:"fonts" yaml:"fonts" json:"fonts"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                 string          `mapstructure:"host" yaml:"host" json:"host"`
	Port                 int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigins          []string        `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	MaxBodyBytes         int64           `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`
	ReadHeaderTimeoutSec int             `mapstructure:"read_header_timeout_sec" yaml:"read_header_timeout_sec" json:"read_header_timeout_sec"`
	ShutdownTimeout      int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	WebSocket            bool            `mapstructure:"websocket" yaml:"websocket" json:"websocket"`
	RateLimit            RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains the optional per-client limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	Creator       string `mapstructure:"creator" yaml:"creator" json:"creator"`
	DefaultPDFDPI int    `mapstructure:"default_pdf_dpi" yaml:"default_pdf_dpi" json:"default_pdf_dpi"`
	MaxPixels     int    `mapstructure:"max_pixels" yaml:"max_pixels" json:"max_pixels"`
}

// FontsConfig contains font discovery settings.
type FontsConfig struct {
	Dirs          []string `mapstructure:"dirs" yaml:"dirs" json:"dirs"`
	DisableSystem bool     `mapstructure:"disable_system" yaml:"disable_system" json:"disable_system"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
