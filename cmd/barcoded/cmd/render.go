package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barcoded/internal/barcode"
	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/render"
)

// renderCmd renders a single request file.
var renderCmd = &cobra.Command{
	Use:   "render <request.json|->",
	Short: "Render one barcode request",
	Long: `Render the request in a JSON file (or stdin with "-").

Without --kind the file must be a job envelope:
  {"kind": "1d", "request": {...}}

With --kind the file holds the bare request body, exactly as POSTed to
/create1d or /create2d.

Examples:
  barcoded render job.json
  barcoded render ean.json --kind 1d --output ean.svg
  barcoded render qr.json --kind 2d --output - > qr.png
  barcoded render qr.json --kind 2d --verify`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

// readJob loads a job from path. An empty kind means path holds an envelope.
func readJob(path, kind string, stdin io.Reader) (render.Job, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return render.Job{}, fmt.Errorf("failed to read request: %w", err)
	}
	if kind != "" {
		return render.Job{Kind: render.Kind(kind), Request: data}, nil
	}
	var job render.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return render.Job{}, fmt.Errorf("failed to parse job envelope: %w", err)
	}
	return job, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	lang, _ := cmd.Flags().GetString("lang")
	output, _ := cmd.Flags().GetString("output")
	verify, _ := cmd.Flags().GetBool("verify")

	job, err := readJob(args[0], kind, cmd.InOrStdin())
	if err != nil {
		return err
	}

	r, err := newRenderer(GetConfig())
	if err != nil {
		return err
	}
	res, err := r.RenderJob(cmd.Context(), job)
	if err != nil {
		return fmt.Errorf("render failed (%d): %s", render.Status(err), render.Message(err, i18n.FromAcceptLanguage(lang)))
	}
	defer res.Release()

	if verify {
		if err := verifyResult(cmd, job, res); err != nil {
			return err
		}
	}

	if output == "-" {
		_, err = cmd.OutOrStdout().Write(res.Bytes())
		return err
	}
	if output == "" {
		output = res.Filename
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, res.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Debug("Rendered barcode", "type", res.TypeName, "file", output, "bytes", res.Len())
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s, %d bytes\n", output, res.ContentType, res.Len())
	return nil
}

// verifyResult decodes raster output again and reports the decoded text.
func verifyResult(cmd *cobra.Command, job render.Job, res *render.Result) error {
	format, err := barcode.JobFormat(job)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	decoded, err := barcode.Verify(cmd.Context(), res.Bytes(), format)
	if errors.Is(err, barcode.ErrNotRaster) {
		return fmt.Errorf("verify: %w", err)
	}
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "verified %s: %q\n", decoded.Format, decoded.Text)
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("kind", "", "request kind (1d or 2d); empty reads a job envelope")
	renderCmd.Flags().String("lang", "en", "language for error messages (en or de)")
	renderCmd.Flags().StringP("output", "o", "", "output file (default: the generated filename, - for stdout)")
	renderCmd.Flags().Bool("verify", false, "decode raster output again and fail if the symbol is unreadable")
}
