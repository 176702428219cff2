// Package batch renders directories of job envelope files with a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Result holds the result of a batch run.
type Result struct {
	Items       []*Item
	Files       []string
	Duration    time.Duration
	WorkerCount int
}

// Process discovers job files under paths, renders them and writes the
// outputs into config.OutputDir. Rendering failures are reported per item;
// the returned error covers discovery and configuration problems.
func Process(ctx context.Context, r Renderer, paths []string, config *Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	files, err := discoverJobFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover job files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no job files found")
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progress = NewConsoleProgressCallback(os.Stderr, "Rendering: ").
			WithUpdateInterval(config.ProgressInterval)
	}

	start := time.Now()
	items := processFilesParallel(ctx, r, files, config.OutputDir, config.Workers, config.ContinueOnError, progress)
	return &Result{
		Items:       items,
		Files:       files,
		Duration:    time.Since(start),
		WorkerCount: config.Workers,
	}, ctx.Err()
}

// Failed returns the number of items that did not render, counting
// skipped files.
func (r *Result) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it == nil || !it.OK() {
			n++
		}
	}
	return n
}

// FormatResults formats the report in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Items, format)
}

// SaveResults writes the report to outputFile, or to w when outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = io.WriteString(w, output)
	return err
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	ok := len(r.Files) - r.Failed()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", len(r.Files))
	_, _ = fmt.Fprintf(w, "  Rendered: %d\n", ok)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", r.Failed())
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if len(r.Files) > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f files/sec\n", float64(len(r.Files))/r.Duration.Seconds())
	}
}
