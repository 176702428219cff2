package request

import (
	"fmt"
)

// Raster DPI and EPS preview bounds.
const (
	MinRasterDPI     = 72
	MaxRasterDPI     = 2400
	MaxEPSPreviewDPI = 600
)

// ValidationError is a structural request error. Messages are English only.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// rule is a declarative check: it fails when failed returns true.
type rule struct {
	field   string
	failed  func() bool
	message string
}

func isNil[T any](p *T) bool { return p == nil }

// outside reports whether a set value lies outside [lo, hi]. Unset values
// pass; presence is checked by separate rules.
func outside[T int | float64](p *T, lo, hi T) bool {
	return p != nil && (*p < lo || *p > hi)
}

func below[T int | float64](p *T, lo T) bool { return p != nil && *p < lo }

func notPositive(p *float64) bool { return p != nil && *p <= 0 }

func commonRules(c *Common) []rule {
	return []rule{
		{"content", func() bool { return isNil(c.Content) }, "Content is required"},
		{"width", func() bool { return isNil(c.Width) }, "Width is required"},
		{"width", func() bool { return notPositive(c.Width) }, "Width must be greater than 0"},
		{"height", func() bool { return isNil(c.Height) }, "Height is required"},
		{"height", func() bool { return notPositive(c.Height) }, "Height must be greater than 0"},
		{"marginLeft", func() bool { return below(c.MarginLeft, 0) }, "Left margin must be 0 or greater"},
		{"marginRight", func() bool { return below(c.MarginRight, 0) }, "Right margin must be 0 or greater"},
		{"marginTop", func() bool { return below(c.MarginTop, 0) }, "Top margin must be 0 or greater"},
		{"marginBottom", func() bool { return below(c.MarginBottom, 0) }, "Bottom margin must be 0 or greater"},
		{"format", func() bool { return isNil(c.Format) }, "Format is required"},
		{"formatPreviewDpiEPS", func() bool { return outside(c.FormatPreviewDpiEPS, 0, MaxEPSPreviewDPI) },
			fmt.Sprintf("EPS preview DPI must be between 0 and %d", MaxEPSPreviewDPI)},
	}
}

func linearRules(r *Linear) []rule {
	return []rule{
		{"type", func() bool { return isNil(r.Type) }, "Type is required"},
		{"textOffset", func() bool { return outside(r.TextOffset, -100, 100) }, "Text offset must be between -100 and 100"},
		{"fontSize", func() bool { return below(r.FontSize, 0) }, "Font size must be 0 (auto) or greater"},
		{"ratio", func() bool { return outside(r.Ratio, 2.0, 3.0) }, "Ratio must be between 2.0 and 3.0"},
	}
}

func twoDRules(r *TwoD) []rule {
	return []rule{
		{"type", func() bool { return isNil(r.Type) }, "Type is required"},
		{"quietZone", func() bool { return below(r.QuietZone, 0) }, "Quiet zone must be 0 or greater"},
		{"qrVersion", func() bool { return outside(r.QRVersion, 0, 40) }, "QR Code version must be between 0 (AUTO) and 40"},
		{"dmSize", func() bool { return outside(r.DMSize, 0, 30) }, "DataMatrix size must be between 0 (AUTO) and 30"},
		{"pdf417ErrorCorrection", func() bool { return outside(r.PDF417ErrorCorrection, 0, 8) },
			"PDF417 error correction must be between 0 and 8"},
		{"aztecSize", func() bool { return outside(r.AztecSize, -4, 32) }, "Aztec size must be between -4 and 32, or 0 (AUTO)"},
		{"aztecErrorCorrection", func() bool { return outside(r.AztecErrorCorrection, 5, 95) },
			"Aztec error correction must be between 5 and 95"},
	}
}

func check(rules []rule) error {
	for _, r := range rules {
		if r.failed() {
			return &ValidationError{Field: r.field, Message: r.message}
		}
	}
	return nil
}

// validateCommon runs the checks that need more than one field: raster DPI
// bounds and a positive drawing area inside the margins.
func validateCommon(c *Common) error {
	if c.Format.Raster() {
		dpi := 0
		if c.DPI != nil {
			dpi = *c.DPI
		}
		if dpi < MinRasterDPI || dpi > MaxRasterDPI {
			return &ValidationError{Field: "dpi",
				Message: fmt.Sprintf("Raster formats require DPI between %d and %d", MinRasterDPI, MaxRasterDPI)}
		}
	}
	if *c.Width-value(c.MarginLeft)-value(c.MarginRight) <= 0 {
		return &ValidationError{Field: "marginLeft", Message: "Horizontal margins must be smaller than width"}
	}
	if *c.Height-value(c.MarginTop)-value(c.MarginBottom) <= 0 {
		return &ValidationError{Field: "marginTop", Message: "Vertical margins must be smaller than height"}
	}
	return nil
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// ValidateLinear returns the first violated rule of a linear request as a
// *ValidationError, or nil.
func ValidateLinear(r *Linear) error {
	if err := check(append(commonRules(&r.Common), linearRules(r)...)); err != nil {
		return err
	}
	return validateCommon(&r.Common)
}

// ValidateTwoD returns the first violated rule of a 2D request as a
// *ValidationError, or nil. The PDF417 dimensions are checked last because
// 0 means automatic and cannot be written as a plain range.
func ValidateTwoD(r *TwoD) error {
	if err := check(append(commonRules(&r.Common), twoDRules(r)...)); err != nil {
		return err
	}
	if err := validateCommon(&r.Common); err != nil {
		return err
	}
	if r.PDF417Cols != nil && *r.PDF417Cols != 0 && (*r.PDF417Cols < 1 || *r.PDF417Cols > 30) {
		return &ValidationError{Field: "pdf417Cols", Message: "PDF417 columns must be 0 (AUTO) or between 1 and 30"}
	}
	if r.PDF417Rows != nil && *r.PDF417Rows != 0 && (*r.PDF417Rows < 3 || *r.PDF417Rows > 90) {
		return &ValidationError{Field: "pdf417Rows", Message: "PDF417 rows must be 0 (AUTO) or between 3 and 90"}
	}
	return nil
}
