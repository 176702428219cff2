// Package export records a drawn symbol and writes it as PDF, EPS, SVG, PNG,
// BMP or JPEG.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/MeKo-Tech/barcoded/internal/colors"
	"github.com/MeKo-Tech/barcoded/internal/fonts"
)

const mmPerInch = 25.4

// DefaultPDFDPI is the resolution of PDF pages when the request has no DPI.
const DefaultPDFDPI = 600

// Document is a page of filled rectangles and text runs. Coordinates are in
// millimetres with the origin at the top left, before the transform.
type Document struct {
	Width, Height float64
	Title         string
	Creator       string
	Foreground    colors.Color
	Background    colors.Color
	// Opaque paints the background. Formats without transparency always do.
	Opaque    bool
	Transform Transform

	rects []rect
	texts []textRun
}

type rect struct{ x, y, w, h float64 }

type textRun struct {
	text        string
	x, baseline float64
	face        fonts.Face
}

// NewDocument returns an empty opaque document of the given page size.
func NewDocument(width, height float64) *Document {
	return &Document{Width: width, Height: height, Opaque: true}
}

// FillRect records a rectangle in the foreground color.
func (d *Document) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	d.rects = append(d.rects, rect{x, y, w, h})
}

// DrawText records a text run starting at x on the given baseline.
func (d *Document) DrawText(text string, x, baseline float64, face fonts.Face) {
	if text == "" {
		return
	}
	d.texts = append(d.texts, textRun{text: text, x: x, baseline: baseline, face: face})
}

// PageSize returns the size of the written page, after the transform.
func (d *Document) PageSize() (w, h float64) {
	if d.Transform.SwapsAxes() {
		return d.Height, d.Width
	}
	return d.Width, d.Height
}

// WriteOptions selects the container and its format specific settings.
type WriteOptions struct {
	Format Format
	// DPI is the raster resolution. PDF falls back to PDFDPI when it is 0.
	DPI        int
	PDFDPI     int
	InlineSVG  bool
	PreviewDPI int
}

// Write encodes d into w.
func Write(w io.Writer, d *Document, opts WriteOptions) error {
	switch opts.Format {
	case SVG:
		return writeSVG(w, d, opts.InlineSVG)
	case EPS:
		return writeEPS(w, d, opts.PreviewDPI)
	case PDF:
		dpi := opts.DPI
		if dpi <= 0 {
			dpi = opts.PDFDPI
		}
		if dpi <= 0 {
			dpi = DefaultPDFDPI
		}
		return writePDF(w, d, dpi)
	case PNG, BMP, JPG:
		if opts.DPI <= 0 {
			return fmt.Errorf("export %s: dpi must be positive", opts.Format)
		}
		return writeRaster(w, d, opts.Format, opts.DPI)
	}
	return fmt.Errorf("export: unsupported format %s", opts.Format)
}

// matrix maps document coordinates to page coordinates as (a b c d e f) with
// x' = a*x + c*y + e and y' = b*x + d*y + f. Rotations are clockwise.
func (d *Document) matrix() [6]float64 {
	w, h := d.Width, d.Height
	switch d.Transform {
	case Rotate90:
		return [6]float64{0, 1, -1, 0, h, 0}
	case Rotate180:
		return [6]float64{-1, 0, 0, -1, w, h}
	case Rotate270:
		return [6]float64{0, -1, 1, 0, 0, w}
	case FlipHorizontal:
		return [6]float64{-1, 0, 0, 1, w, 0}
	case FlipVertical:
		return [6]float64{1, 0, 0, -1, 0, h}
	}
	return [6]float64{1, 0, 0, 1, 0, 0}
}

// paintsBackground reports whether the background is drawn for format f.
func (d *Document) paintsBackground(f Format) bool {
	return d.Opaque || !f.Info().Transparency
}

// maxPixelCoord bounds converted coordinates so that pixel arithmetic never
// overflows an int.
const maxPixelCoord = 1 << 24

// pixels converts millimetres to whole device pixels, clamped to
// ±maxPixelCoord.
func pixels(mm float64, dpi int) int {
	v := math.Round(mm * float64(dpi) / mmPerInch)
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-maxPixelCoord, math.Min(v, maxPixelCoord)))
}

// points converts millimetres to PostScript points.
func points(mm float64) float64 { return mm * 72 / mmPerInch }
