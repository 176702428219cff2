package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barcoded/internal/batch"
	"github.com/MeKo-Tech/barcoded/internal/config"
)

// batchCmd renders job envelope files in parallel.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Render many job files in parallel",
	Long: `Render job envelope files ({"kind": "1d"|"2d", "request": {...}}) with a
pool of workers. An envelope may carry an "output" path relative to the
output directory; otherwise the job file name with the format extension is
used.

Examples:
  barcoded batch jobs/
  barcoded batch jobs/ --workers 8 --output-dir labels
  barcoded batch a.json b.json --format json --output report.json
  barcoded batch jobs/ --exclude "draft-*" --progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config with
// explicitly set flags taking precedence.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	flags := cmd.Flags()
	bc := batch.DefaultConfig()

	bc.Workers = cfg.Batch.Workers
	if flags.Changed("workers") {
		bc.Workers, _ = flags.GetInt("workers")
	}
	bc.OutputDir = cfg.Batch.OutputDir
	if flags.Changed("output-dir") {
		bc.OutputDir, _ = flags.GetString("output-dir")
	}
	bc.Format = cfg.Batch.Format
	if flags.Changed("format") {
		bc.Format, _ = flags.GetString("format")
	}
	bc.ContinueOnError = cfg.Batch.ContinueOnError
	if flags.Changed("stop-on-error") {
		stop, _ := flags.GetBool("stop-on-error")
		bc.ContinueOnError = !stop
	}

	// Discovery and progress settings are CLI-only.
	bc.OutputFile, _ = flags.GetString("output")
	bc.Recursive, _ = flags.GetBool("recursive")
	bc.IncludePatterns, _ = flags.GetStringSlice("include")
	bc.ExcludePatterns, _ = flags.GetStringSlice("exclude")
	bc.ShowProgress, _ = flags.GetBool("progress")
	bc.Quiet, _ = flags.GetBool("quiet")
	bc.ProgressInterval, _ = flags.GetDuration("progress-interval")
	return &bc
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	bc := configToBatchConfig(cfg, cmd)

	r, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	result, err := batch.Process(cmd.Context(), r, args, bc)
	if err != nil && result == nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}
	if err := result.SaveResults(cmd.OutOrStdout(), bc.Format, bc.OutputFile); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	if !bc.Quiet {
		result.PrintStats(cmd.ErrOrStderr())
	}
	if n := result.Failed(); n > 0 {
		return fmt.Errorf("%d of %d jobs failed", n, len(result.Files))
	}
	return err
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "number of parallel workers")
	batchCmd.Flags().StringP("output-dir", "d", "out", "directory for rendered files")
	batchCmd.Flags().StringP("format", "f", "text", "report format: text, json, csv")
	batchCmd.Flags().StringP("output", "o", "", "report file (default: stdout)")
	batchCmd.Flags().Bool("stop-on-error", false, "stop scheduling jobs after the first failure")

	batchCmd.Flags().BoolP("recursive", "r", true, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", batch.DefaultIncludePatterns, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	batchCmd.Flags().Bool("progress", false, "show progress bar")
	batchCmd.Flags().Bool("quiet", false, "suppress progress and statistics")
	batchCmd.Flags().Duration("progress-interval", batch.DefaultConfig().ProgressInterval, "progress update interval")
}
