package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barcoded/internal/config"
	"github.com/MeKo-Tech/barcoded/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the barcode rendering HTTP server",
	Long: `Start an HTTP server that renders barcodes.

The server provides the following endpoints:
  POST /create1d   - Render a linear barcode
  POST /create2d   - Render a two-dimensional barcode
  GET  /formats    - Output formats and their capabilities
  GET  /types-1d   - Linear types and their capabilities
  GET  /types-2d   - 2D types and their capabilities
  GET  /fonts      - Usable font families
  GET  /health     - Health check endpoint
  GET  /metrics    - Prometheus metrics
  GET  /ws         - WebSocket render preview (when enabled)

Examples:
  barcoded serve
  barcoded serve --port 8080
  barcoded serve --host 0.0.0.0 --port 3000 --websocket`,
	RunE: runServe,
}

// applyServeFlags overrides configuration values with explicitly set flags.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		cfg.Server.CORSOrigins, _ = flags.GetStringSlice("cors-origin")
	}
	if flags.Changed("max-body-bytes") {
		cfg.Server.MaxBodyBytes, _ = flags.GetInt64("max-body-bytes")
	}
	if flags.Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
	if flags.Changed("websocket") {
		cfg.Server.WebSocket, _ = flags.GetBool("websocket")
	}
	if flags.Changed("rate-limit-enabled") {
		cfg.Server.RateLimit.Enabled, _ = flags.GetBool("rate-limit-enabled")
	}
	if flags.Changed("requests-per-minute") {
		cfg.Server.RateLimit.RequestsPerMinute, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("requests-per-hour") {
		cfg.Server.RateLimit.RequestsPerHour, _ = flags.GetInt("requests-per-hour")
	}
	if flags.Changed("max-requests-per-day") {
		cfg.Server.RateLimit.MaxRequestsPerDay, _ = flags.GetInt("max-requests-per-day")
	}
	if flags.Changed("max-data-per-day") {
		cfg.Server.RateLimit.MaxDataPerDay, _ = flags.GetInt64("max-data-per-day")
	}
}

// newHTTPServer builds the renderer, the API server and the http.Server.
func newHTTPServer(cfg *config.Config) (*http.Server, error) {
	r, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}
	api, err := server.NewServer(cfg.ToServerConfig(r.Fonts().Names(), slog.Default()), r)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	httpServer, err := newHTTPServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serveUntilDone(ctx, httpServer, cfg)
}

// serveUntilDone runs srv until ctx ends, then shuts it down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting barcode server", "addr", srv.Addr, "websocket", cfg.Server.WebSocket)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	slog.Info("Starting graceful shutdown", "timeout", cfg.ShutdownTimeout().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}
	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().StringSlice("cors-origin", []string{"*"}, "allowed CORS origins")
	serveCmd.Flags().Int64("max-body-bytes", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("websocket", false, "enable the /ws render preview")
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 5000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 100*1024*1024, "maximum response bytes per day per client")
}
