package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/testutil"
)

func TestTimer(t *testing.T) {
	timer := NewTimer("t")
	time.Sleep(time.Millisecond)
	d := timer.Stop()
	assert.Positive(t, d)
	assert.Equal(t, d, timer.Duration())
	assert.Contains(t, timer.String(), "t: ")
}

func TestBenchmarkSuiteRun(t *testing.T) {
	suite := NewBenchmarkSuite(0)
	var calls atomic.Int32
	suite.Add("ok", func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	})
	suite.Add("fail", func(context.Context) (int, error) {
		return 0, errors.New("test error")
	})

	res := suite.Run(context.Background(), "ok", 5)
	require.NoError(t, res.Error)
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, 42, res.OutputBytes)
	assert.Positive(t, res.OpsPerSec())

	res = suite.Run(context.Background(), "fail", 3)
	assert.ErrorContains(t, res.Error, "test error")
	assert.Contains(t, res.String(), "fail: ERROR - test error")

	res = suite.Run(context.Background(), "missing", 1)
	assert.ErrorContains(t, res.Error, "not found")
}

func TestBenchmarkSuiteParallel(t *testing.T) {
	suite := NewBenchmarkSuite(4)
	var calls atomic.Int32
	suite.Add("count", func(context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})
	results := suite.RunAll(context.Background(), 20)
	require.Len(t, results, 1)
	assert.Equal(t, int32(20), calls.Load())
	assert.Equal(t, 4, results[0].Workers)
	assert.Equal(t, results, suite.Results())
}

func TestBenchmarkResultZeroIterations(t *testing.T) {
	var br BenchmarkResult
	assert.Zero(t, br.PerOp())
	assert.Zero(t, br.BytesPerOp())
	assert.Zero(t, br.AllocsPerOp())
	assert.Zero(t, br.OpsPerSec())
}

func TestAddJob(t *testing.T) {
	r, err := render.New(render.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	suite := NewBenchmarkSuite(2)
	suite.AddJob("ean13", r, render.Job{Kind: render.Kind1D, Request: json.RawMessage(testutil.SampleEAN13)})
	suite.AddJob("broken", r, render.Job{Kind: render.Kind2D, Request: json.RawMessage(`{}`)})
	suite.RunAll(context.Background(), 4)

	results := suite.Results()
	require.Len(t, results, 2)
	require.NoError(t, results[0].Error)
	assert.Positive(t, results[0].OutputBytes)
	assert.Error(t, results[1].Error)

	var buf bytes.Buffer
	suite.WriteResults(&buf)
	assert.Contains(t, buf.String(), "ean13: 4 iterations, 2 workers")
}
