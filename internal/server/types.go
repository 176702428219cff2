package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/request"
)

// DefaultMaxBodyBytes limits request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// renderer defines the methods needed by the server from a render.Renderer.
type renderer interface {
	Render1D(ctx context.Context, req *request.Linear) (*render.Result, error)
	Render2D(ctx context.Context, req *request.TwoD) (*render.Result, error)
	RenderJob(ctx context.Context, job render.Job) (*render.Result, error)
}

// Server holds the HTTP server state and dependencies. Everything it holds
// is read-only after NewServer.
type Server struct {
	renderer     renderer
	fonts        []string
	corsOrigins  []string
	maxBodyBytes int64
	rateLimiter  *RateLimiter
	websocket    bool
	log          *slog.Logger
}

// RateLimitConfig holds optional per-client limits. Zero values disable a
// limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// Config holds server configuration.
type Config struct {
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins  []string
	MaxBodyBytes int64
	RateLimit    RateLimitConfig
	// WebSocket enables the /ws render preview.
	WebSocket bool
	// Fonts is the list served by /fonts.
	Fonts  []string
	Logger *slog.Logger
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// MetadataItem is one entry of /formats, /types-1d and /types-2d.
type MetadataItem struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// NewServer creates a server rendering with r.
func NewServer(config Config, r renderer) (*Server, error) {
	if r == nil {
		return nil, errors.New("server: renderer is required")
	}
	s := &Server{
		renderer:     r,
		fonts:        config.Fonts,
		corsOrigins:  config.CORSOrigins,
		maxBodyBytes: config.MaxBodyBytes,
		websocket:    config.WebSocket,
		log:          config.Logger,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.fonts == nil {
		s.fonts = []string{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if rl := config.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay, rl.MaxDataPerDay)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/health", s.wrap(s.healthHandler))
	mux.HandleFunc("/fonts", s.wrap(s.fontsHandler))
	mux.HandleFunc("/create1d", s.wrap(s.rateLimitMiddleware(s.create1DHandler)))
	mux.HandleFunc("/create2d", s.wrap(s.rateLimitMiddleware(s.create2DHandler)))
	if s.websocket {
		mux.HandleFunc("/ws", s.wrap(s.renderWebSocketHandler))
	}
	mux.HandleFunc("/{path}", s.wrap(s.metadataHandler))
}

// Handler returns a mux with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// wrap applies the middleware shared by all API routes.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.requestIDMiddleware(s.corsMiddleware(next))
}
