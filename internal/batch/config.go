package batch

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// DefaultIncludePatterns selects job envelopes when no include pattern is given.
var DefaultIncludePatterns = []string{"*.json"}

// Config holds all configuration for batch rendering.
type Config struct {
	// Output settings
	OutputDir  string
	Format     string // report format: text, json or csv
	OutputFile string

	// Worker pool
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
}

// DefaultConfig returns the settings used when a field is left empty.
func DefaultConfig() Config {
	return Config{
		OutputDir:        "out",
		Format:           "text",
		Workers:          4,
		ContinueOnError:  true,
		Recursive:        true,
		IncludePatterns:  slices.Clone(DefaultIncludePatterns),
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if !slices.Contains([]string{"text", "json", "csv"}, c.Format) {
		return fmt.Errorf("unsupported report format %q", c.Format)
	}
	return nil
}
