// Package symbol builds linear and two-dimensional barcode symbols and draws
// them onto a Canvas. Encoding is delegated to zxinggo; this package adds
// the validation, human-readable text and layout around it.
package symbol

import (
	"math"

	"github.com/MeKo-Tech/barcoded/internal/fonts"
)

// Canvas receives drawing operations in millimetres with the origin at the
// top left.
type Canvas interface {
	FillRect(x, y, w, h float64)
	DrawText(text string, x, baseline float64, face fonts.Face)
}

// Geometry is the drawing area of a symbol. Dot is the device dot size in
// millimetres for raster output and 0 for vector output.
type Geometry struct {
	X, Y          float64
	Width, Height float64
	Dot           float64
}

// Symbol is a built barcode that can be drawn.
type Symbol interface {
	TypeName() string
	Draw(c Canvas, g Geometry)
}

// snap rounds v down to whole device dots, keeping at least one dot.
func (g Geometry) snap(v float64) float64 {
	if g.Dot <= 0 {
		return v
	}
	n := math.Floor(v/g.Dot + 1e-9)
	if n < 1 {
		n = 1
	}
	return n * g.Dot
}

// round rounds v to the nearest whole device dot.
func (g Geometry) round(v float64) float64 {
	if g.Dot <= 0 {
		return v
	}
	return math.Round(v/g.Dot) * g.Dot
}

// Recorder is a Canvas that stores operations. It is used by tests and by
// callers that need the symbol bounds before drawing.
type Recorder struct {
	Rects []Rect
	Texts []Text
}

// Rect is a recorded FillRect call.
type Rect struct{ X, Y, W, H float64 }

// Text is a recorded DrawText call.
type Text struct {
	Value    string
	X        float64
	Baseline float64
	Face     fonts.Face
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.Rects = append(r.Rects, Rect{X: x, Y: y, W: w, H: h})
}

func (r *Recorder) DrawText(text string, x, baseline float64, face fonts.Face) {
	r.Texts = append(r.Texts, Text{Value: text, X: x, Baseline: baseline, Face: face})
}
