// Package request defines the 1D and 2D render requests, their defaults and
// their validation rules.
package request

import (
	"github.com/MeKo-Tech/barcoded/internal/colors"
	"github.com/MeKo-Tech/barcoded/internal/export"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

// Defaults of optional parameters.
const (
	DefaultFontName  = "SansSerif"
	DefaultRatio     = 2.5
	DefaultQuietZone = 1
	DefaultPDF417EC  = 2
	DefaultAztecEC   = 23
)

// Common holds the parameters shared by 1D and 2D requests. Lengths are in
// millimetres. Nil pointers are unset until Normalize runs.
type Common struct {
	Content             *string           `json:"content"`
	Width               *float64          `json:"width"`
	Height              *float64          `json:"height"`
	MarginLeft          *float64          `json:"marginLeft"`
	MarginRight         *float64          `json:"marginRight"`
	MarginTop           *float64          `json:"marginTop"`
	MarginBottom        *float64          `json:"marginBottom"`
	Format              *export.Format    `json:"format"`
	FormatInlineSVG     *bool             `json:"formatInlineSVG"`
	FormatPreviewDpiEPS *int              `json:"formatPreviewDpiEPS"`
	ColorModel          *colors.Model     `json:"colorModel"`
	Foreground          []int             `json:"foreground"`
	Background          []int             `json:"background"`
	Opaque              *bool             `json:"opaque"`
	Transform           *export.Transform `json:"transform"`
	DPI                 *int              `json:"dpi"`
}

// Linear is a request for a linear symbol.
type Linear struct {
	Common
	Type                   *symbol.LinearType `json:"type"`
	AutoComplete           *bool              `json:"autoComplete"`
	AppendOptionalChecksum *bool              `json:"appendOptionalChecksum"`
	ShowOptionalChecksum   *bool              `json:"showOptionalChecksum"`
	AddOn                  *string            `json:"addon"`
	TextVisible            *bool              `json:"textVisible"`
	TextOnTop              *bool              `json:"textOnTop"`
	TextOffset             *float64           `json:"textOffset"`
	FontName               *string            `json:"fontName"`
	// FontSize is in points; 0 fits the text to the symbol.
	FontSize *float64 `json:"fontSize"`
	Ratio    *float64 `json:"ratio"`
}

// TwoD is a request for a two-dimensional symbol.
type TwoD struct {
	Common
	Type                  *symbol.TwoDType          `json:"type"`
	Charset               *string                   `json:"charset"`
	QuietZone             *int                      `json:"quietZone"`
	QRVersion             *int                      `json:"qrVersion"`
	QRErrorCorrection     *symbol.QRErrorCorrection `json:"qrErrorCorrection"`
	DMSize                *int                      `json:"dmSize"`
	DMShape               *symbol.DMShape           `json:"dmShape"`
	PDF417Cols            *int                      `json:"pdf417Cols"`
	PDF417Rows            *int                      `json:"pdf417Rows"`
	PDF417ErrorCorrection *int                      `json:"pdf417ErrorCorrection"`
	AztecSize             *int                      `json:"aztecSize"`
	AztecErrorCorrection  *int                      `json:"aztecErrorCorrection"`
}

func setDefault[T any](p **T, v T) {
	if *p == nil {
		*p = &v
	}
}

// Normalize fills unset optional fields. The color model is resolved first
// because the color defaults depend on it. Options that only apply to one
// format are switched off for the others.
func (c *Common) Normalize() {
	setDefault(&c.ColorModel, colors.RGB)
	fg, bg := colors.Defaults(*c.ColorModel)
	if c.Foreground == nil {
		c.Foreground = fg
	}
	if c.Background == nil {
		c.Background = bg
	}
	setDefault(&c.MarginLeft, 0)
	setDefault(&c.MarginRight, 0)
	setDefault(&c.MarginTop, 0)
	setDefault(&c.MarginBottom, 0)
	setDefault(&c.FormatInlineSVG, false)
	setDefault(&c.FormatPreviewDpiEPS, 0)
	setDefault(&c.Opaque, true)
	setDefault(&c.Transform, export.Rotate0)
	setDefault(&c.DPI, 0)

	if c.Format == nil || *c.Format != export.SVG {
		*c.FormatInlineSVG = false
	}
	if c.Format == nil || *c.Format != export.EPS {
		*c.FormatPreviewDpiEPS = 0
	}
}

// Normalize fills unset optional fields of a linear request.
func (r *Linear) Normalize() {
	r.Common.Normalize()
	setDefault(&r.AutoComplete, false)
	setDefault(&r.AppendOptionalChecksum, false)
	setDefault(&r.ShowOptionalChecksum, false)
	setDefault(&r.AddOn, "")
	setDefault(&r.TextVisible, true)
	setDefault(&r.TextOnTop, false)
	setDefault(&r.TextOffset, 0)
	setDefault(&r.FontName, DefaultFontName)
	setDefault(&r.FontSize, 0)
	setDefault(&r.Ratio, DefaultRatio)
}

// Normalize fills unset optional fields of a 2D request. Charset stays nil
// when unset.
func (r *TwoD) Normalize() {
	r.Common.Normalize()
	setDefault(&r.QuietZone, DefaultQuietZone)
	setDefault(&r.QRVersion, 0)
	setDefault(&r.QRErrorCorrection, symbol.QRLevelM)
	setDefault(&r.DMSize, 0)
	setDefault(&r.DMShape, symbol.DMShapeAuto)
	setDefault(&r.PDF417Cols, 0)
	setDefault(&r.PDF417Rows, 0)
	setDefault(&r.PDF417ErrorCorrection, DefaultPDF417EC)
	setDefault(&r.AztecSize, 0)
	setDefault(&r.AztecErrorCorrection, DefaultAztecEC)
}
