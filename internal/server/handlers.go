package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/barcoded/internal/export"
	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/request"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, HealthResponse{Status: "UP"})
}

// fontsHandler lists the usable font families.
func (s *Server) fontsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.fonts)
}

// metadataHandler serves /formats, /types-1d and /types-2d. Unknown paths
// return an empty list.
func (s *Server) metadataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, metadata(r.PathValue("path")))
}

func metadata(path string) []MetadataItem {
	items := []MetadataItem{}
	switch path {
	case "formats":
		for _, f := range export.Formats() {
			items = append(items, MetadataItem{Name: f.String(), Properties: f.Properties()})
		}
	case "types-1d":
		for _, t := range symbol.LinearTypes() {
			items = append(items, MetadataItem{Name: t.String(), Properties: t.Properties()})
		}
	case "types-2d":
		for _, t := range symbol.TwoDTypes() {
			items = append(items, MetadataItem{Name: t.String(), Properties: t.Properties()})
		}
	}
	return items
}

// create1DHandler renders a linear symbol.
func (s *Server) create1DHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	start := time.Now()
	req, err := request.DecodeLinear(r.Body)
	var res *render.Result
	if err == nil {
		res, err = s.renderer.Render1D(r.Context(), req)
	}
	s.respond(w, r, render.Kind1D, start, res, err)
}

// create2DHandler renders a two-dimensional symbol.
func (s *Server) create2DHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	start := time.Now()
	req, err := request.DecodeTwoD(r.Body)
	var res *render.Result
	if err == nil {
		res, err = s.renderer.Render2D(r.Context(), req)
	}
	s.respond(w, r, render.Kind2D, start, res, err)
}

// respond writes the rendered document or the error and records metrics.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, kind render.Kind, start time.Time,
	res *render.Result, err error,
) {
	status := render.Status(err)
	renderRequestsTotal.WithLabelValues(string(kind), strconv.Itoa(status)).Inc()
	renderDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		if status == http.StatusInternalServerError {
			s.log.ErrorContext(r.Context(), "Render failed",
				"kind", kind, "error", err, "request_id", RequestID(r.Context()))
		}
		lang := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
		writeText(w, status, render.Message(err, lang))
		return
	}
	defer res.Release()

	renderOutputBytes.WithLabelValues(res.Format.String()).Observe(float64(res.Len()))
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(res.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Bytes()); err != nil {
		s.log.WarnContext(r.Context(), "Failed to write response", "error", err)
	}
}

// writeText writes a plain-text error body.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.Header().Del("Content-Disposition")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}
