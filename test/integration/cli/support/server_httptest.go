package support

import (
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/server"
)

// createTestHTTPServer starts an httptest server backed by the real
// renderer with the bundled fonts only.
func (testCtx *TestContext) createTestHTTPServer(cfg server.Config) error {
	testCtx.stopTestHTTPServer()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := render.New(render.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	cfg.Fonts = r.Fonts().Names()
	cfg.Logger = logger

	srv, err := server.NewServer(cfg, r)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	testCtx.HTTPTestServer = httptest.NewServer(srv.Handler())
	return nil
}

// stopTestHTTPServer stops the httptest server.
func (testCtx *TestContext) stopTestHTTPServer() {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Close()
		testCtx.HTTPTestServer = nil
	}
}

// GetServerURL returns the base URL of the running server.
func (testCtx *TestContext) GetServerURL() string {
	if testCtx.HTTPTestServer == nil {
		return ""
	}
	return testCtx.HTTPTestServer.URL
}
