package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/render"
)

// Renderer renders one job envelope.
type Renderer interface {
	RenderJob(ctx context.Context, job render.Job) (*render.Result, error)
}

// Envelope is the content of a job file: a render job and an optional
// output file name relative to the output directory.
type Envelope struct {
	render.Job
	Output string `json:"output,omitempty"`
}

// Item is the outcome of one job file.
type Item struct {
	File     string        `json:"file"`
	Kind     string        `json:"kind,omitempty"`
	Output   string        `json:"output,omitempty"`
	Type     string        `json:"type,omitempty"`
	Format   string        `json:"format,omitempty"`
	Bytes    int           `json:"bytes"`
	Status   int           `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether the job rendered.
func (it *Item) OK() bool { return it.Status == http.StatusOK }

// loadEnvelope reads and decodes a job file.
func loadEnvelope(path string) (Envelope, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery over user arguments
	if err != nil {
		return Envelope{}, fmt.Errorf("read %s: %w", path, err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return env, nil
}

// outputPath returns where the rendered document of path is written.
func outputPath(outputDir, path string, env Envelope, res *render.Result) string {
	if env.Output != "" {
		return filepath.Join(outputDir, filepath.Clean("/" + env.Output)[1:])
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(outputDir, base+"."+res.Format.Extension())
}

// processSingleFile renders one job file and writes its output.
func processSingleFile(ctx context.Context, r Renderer, path, outputDir string) *Item {
	start := time.Now()
	item := &Item{File: path}
	defer func() { item.Duration = time.Since(start) }()

	env, err := loadEnvelope(path)
	if err != nil {
		item.Status = http.StatusBadRequest
		item.Error = err.Error()
		return item
	}
	item.Kind = string(env.Kind)

	res, err := r.RenderJob(ctx, env.Job)
	if err != nil {
		item.Status = render.Status(err)
		item.Error = render.Message(err, i18n.English)
		if item.Status == http.StatusInternalServerError {
			item.Error = err.Error()
		}
		return item
	}
	defer res.Release()

	out := outputPath(outputDir, path, env, res)
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		item.Status = http.StatusInternalServerError
		item.Error = err.Error()
		return item
	}
	if err := os.WriteFile(out, res.Bytes(), 0o600); err != nil {
		item.Status = http.StatusInternalServerError
		item.Error = fmt.Sprintf("write %s: %v", out, err)
		return item
	}

	item.Status = http.StatusOK
	item.Output = out
	item.Type = res.TypeName
	item.Format = res.Format.String()
	item.Bytes = res.Len()
	return item
}
