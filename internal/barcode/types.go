// Package barcode decodes rendered symbols again. It is used by the CLI
// to verify raster output and by tests to check that encoded symbols are
// readable.
package barcode

import (
	"context"
	"image"

	zxinggo "github.com/ericlevine/zxinggo"
)

// Options controls decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search. Empty means all.
	Formats []zxinggo.Format

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// PureBarcode hints that the image holds a single unrotated symbol.
	PureBarcode bool

	// ROI optionally restricts decoding to a sub-rectangle of the image.
	// If zero-sized or out of bounds it is ignored.
	ROI image.Rectangle

	// MinSize upscales images whose shorter side is below this many pixels
	// before a second attempt. Zero disables upscaling.
	MinSize int
}

// DefaultMinSize is the upscale threshold used by Verify.
const DefaultMinSize = 300

// Point is an integer point in image coordinates.
type Point struct {
	X int
	Y int
}

// Result represents a decoded barcode.
type Result struct {
	Format zxinggo.Format
	Text   string
	Points []Point         // Corner or key points if available
	BBox   image.Rectangle // Bounding box derived from points
}

// Backend is a barcode decoder implementation.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// NewBackend returns the zxinggo backed decoder.
func NewBackend() Backend { return zxingBackend{} }
