package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/testutil"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	return r
}

func testConfig(outputDir string) *Config {
	cfg := DefaultConfig()
	cfg.OutputDir = outputDir
	cfg.Workers = 2
	return &cfg
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Workers = 0
	assert.ErrorContains(t, cfg.Validate(), "workers")

	cfg = DefaultConfig()
	cfg.OutputDir = ""
	assert.ErrorContains(t, cfg.Validate(), "output directory")

	cfg = DefaultConfig()
	cfg.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "xml")
}

func TestProcess(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	testutil.WriteJob(t, in, "ean.json", "1d", testutil.SampleEAN13)
	testutil.WriteJob(t, in, "qr.json", "2d", testutil.SampleQR)
	testutil.WriteJob(t, in, "bad.json", "1d",
		`{"type":"EAN13","content":"40063813339A","width":40,"height":20,"format":"SVG"}`)
	testutil.WriteFile(t, in, "named.json",
		`{"kind":"2d","output":"labels/box.svg","request":{"type":"DATAMATRIX","content":"A1","width":10,"height":10,"format":"SVG"}}`)
	testutil.WriteFile(t, in, "broken.json", `{"kind":`)

	res, err := Process(context.Background(), newRenderer(t), []string{in}, testConfig(out))
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	assert.Equal(t, 2, res.Failed())

	byName := map[string]*Item{}
	for _, it := range res.Items {
		byName[filepath.Base(it.File)] = it
	}

	ean := byName["ean.json"]
	require.True(t, ean.OK(), ean.Error)
	assert.Equal(t, filepath.Join(out, "ean.svg"), ean.Output)
	assert.Equal(t, "EAN-13", ean.Type)
	assert.Equal(t, "SVG", ean.Format)
	data, err := os.ReadFile(ean.Output)
	require.NoError(t, err)
	assert.Len(t, data, ean.Bytes)

	qr := byName["qr.json"]
	require.True(t, qr.OK(), qr.Error)
	img := testutil.DecodeImage(t, mustRead(t, qr.Output))
	assert.Equal(t, 236, img.Bounds().Dx())

	named := byName["named.json"]
	require.True(t, named.OK(), named.Error)
	assert.Equal(t, filepath.Join(out, "labels", "box.svg"), named.Output)

	bad := byName["bad.json"]
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Status)
	assert.Equal(t, "Invalid character: 'A'", bad.Error)

	broken := byName["broken.json"]
	assert.Equal(t, http.StatusBadRequest, broken.Status)
	assert.Contains(t, broken.Error, "decode")
}

func TestProcess_NoFiles(t *testing.T) {
	_, err := Process(context.Background(), newRenderer(t), []string{t.TempDir()}, testConfig(t.TempDir()))
	assert.EqualError(t, err, "no job files found")
}

func TestOutputPath_StaysInsideOutputDir(t *testing.T) {
	res := &render.Result{}
	got := outputPath("/out", "/in/a.json", Envelope{Output: "../../etc/passwd"}, res)
	assert.Equal(t, filepath.Join("/out", "etc", "passwd"), got)
}

// countingRenderer fails every job and counts calls.
type countingRenderer struct{ calls atomic.Int32 }

func (c *countingRenderer) RenderJob(context.Context, render.Job) (*render.Result, error) {
	c.calls.Add(1)
	return nil, errors.New("boom")
}

func TestProcess_StopOnError(t *testing.T) {
	in := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json", "e.json", "f.json"} {
		testutil.WriteJob(t, in, name, "1d", "{}")
	}
	cfg := testConfig(t.TempDir())
	cfg.Workers = 1
	cfg.ContinueOnError = false

	r := &countingRenderer{}
	res, err := Process(context.Background(), r, []string{in}, cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, 6, res.Failed())
	require.NotNil(t, res.Items[0])
	assert.Equal(t, http.StatusInternalServerError, res.Items[0].Status)
	assert.Equal(t, "boom", res.Items[0].Error)
}

func TestResult_Reports(t *testing.T) {
	res := &Result{
		Files: []string{"a.json", "b.json", "c.json"},
		Items: []*Item{
			{File: "a.json", Kind: "1d", Status: 200, Output: "out/a.svg", Type: "EAN-13", Format: "SVG", Bytes: 10},
			{File: "b.json", Kind: "2d", Status: 422, Error: "invalid"},
			nil,
		},
		WorkerCount: 2,
	}

	text, err := res.FormatResults("text")
	require.NoError(t, err)
	assert.Contains(t, text, "OK   a.json -> out/a.svg (EAN-13 SVG, 10 bytes")
	assert.Contains(t, text, "FAIL b.json: 422 invalid")

	js, err := res.FormatResults("json")
	require.NoError(t, err)
	var report struct {
		Files []Item `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(js), &report))
	assert.Len(t, report.Files, 2)

	csv, err := res.FormatResults("csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,kind,status,output,type,format,bytes,duration_ms,error", lines[0])
	assert.Equal(t, "b.json,2d,422,,,,0,0,invalid", lines[2])

	var buf bytes.Buffer
	require.NoError(t, res.SaveResults(&buf, "text", ""))
	assert.Equal(t, text, buf.String())

	file := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, res.SaveResults(&buf, "csv", file))
	assert.Equal(t, csv, string(mustRead(t, file)))

	buf.Reset()
	res.PrintStats(&buf)
	assert.Contains(t, buf.String(), "Rendered: 1")
	assert.Contains(t, buf.String(), "Failed: 2")
}

func TestConsoleProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProgressCallback(&buf, "R: ").WithUpdateInterval(0)
	p.OnStart(2)
	p.OnProgress(1, 2)
	p.OnProgress(2, 2)
	p.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "R: 0/2 (0.0%)")
	assert.Contains(t, out, "1/2 (50.0%)")
	assert.Contains(t, out, "2/2 (100.0%)")
	assert.Contains(t, out, "Completed in")
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
