package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/request"
)

// failingRenderer returns err from every render call.
type failingRenderer struct{ err error }

func (f failingRenderer) Render1D(context.Context, *request.Linear) (*render.Result, error) {
	return nil, f.err
}

func (f failingRenderer) Render2D(context.Context, *request.TwoD) (*render.Result, error) {
	return nil, f.err
}

func (f failingRenderer) RenderJob(context.Context, render.Job) (*render.Result, error) {
	return nil, f.err
}

var errBoom = errors.New("boom")

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// newTestServer returns a server with a real renderer.
func newTestServer(t *testing.T, config Config) *Server {
	t.Helper()
	r, err := render.New(render.Options{Logger: quietLogger()})
	require.NoError(t, err)
	if config.Logger == nil {
		config.Logger = quietLogger()
	}
	if config.Fonts == nil {
		config.Fonts = r.Fonts().Names()
	}
	s, err := NewServer(config, r)
	require.NoError(t, err)
	return s
}

// post sends a JSON body to the server's handler.
func post(t *testing.T, h http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}
