package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barcoded/internal/benchmark"
)

// benchCmd measures rendering throughput for job files.
var benchCmd = &cobra.Command{
	Use:   "bench <job.json>...",
	Short: "Benchmark rendering of job files",
	Long: `Render each job file repeatedly and report wall time, allocations and
output size per iteration.

Examples:
  barcoded bench testdata/jobs/qr.json
  barcoded bench ean.json --kind 1d --iterations 1000 --workers 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBench,
}

func runBench(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	iterations, _ := cmd.Flags().GetInt("iterations")
	workers, _ := cmd.Flags().GetInt("workers")
	if iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	r, err := newRenderer(GetConfig())
	if err != nil {
		return err
	}
	suite := benchmark.NewBenchmarkSuite(workers)
	for _, path := range args {
		job, err := readJob(path, kind, cmd.InOrStdin())
		if err != nil {
			return err
		}
		suite.AddJob(filepath.Base(path), r, job)
	}

	var failed error
	for _, res := range suite.RunAll(cmd.Context(), iterations) {
		if res.Error != nil && failed == nil {
			failed = fmt.Errorf("%s: %w", res.Name, res.Error)
		}
	}
	suite.WriteResults(cmd.OutOrStdout())
	return failed
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().String("kind", "", "request kind (1d or 2d); empty reads job envelopes")
	benchCmd.Flags().IntP("iterations", "n", 100, "iterations per job")
	benchCmd.Flags().IntP("workers", "w", 1, "concurrent render goroutines")
}
