package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barcoded/internal/colors"
	"github.com/MeKo-Tech/barcoded/internal/export"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

func ptr[T any](v T) *T { return &v }

func validLinear() *Linear {
	return &Linear{
		Common: Common{
			Content: ptr("4006381333931"),
			Width:   ptr(40.0),
			Height:  ptr(20.0),
			Format:  ptr(export.SVG),
		},
		Type: ptr(symbol.EAN13),
	}
}

func validTwoD() *TwoD {
	return &TwoD{
		Common: Common{
			Content: ptr("hello"),
			Width:   ptr(20.0),
			Height:  ptr(20.0),
			Format:  ptr(export.PDF),
		},
		Type: ptr(symbol.QRCode),
	}
}

func TestNormalize_Defaults(t *testing.T) {
	r := validLinear()
	r.Normalize()

	assert.Equal(t, colors.RGB, *r.ColorModel)
	assert.Equal(t, []int{0, 0, 0}, r.Foreground)
	assert.Equal(t, []int{255, 255, 255}, r.Background)
	assert.True(t, *r.Opaque)
	assert.Equal(t, export.Rotate0, *r.Transform)
	assert.Equal(t, 0, *r.DPI)
	assert.Zero(t, *r.MarginLeft)
	assert.True(t, *r.TextVisible)
	assert.False(t, *r.TextOnTop)
	assert.Equal(t, DefaultFontName, *r.FontName)
	assert.Zero(t, *r.FontSize)
	assert.InDelta(t, 2.5, *r.Ratio, 1e-9)
	assert.Empty(t, *r.AddOn)

	d := validTwoD()
	d.Normalize()
	assert.Equal(t, 1, *d.QuietZone)
	assert.Equal(t, symbol.QRLevelM, *d.QRErrorCorrection)
	assert.Equal(t, symbol.DMShapeAuto, *d.DMShape)
	assert.Equal(t, 2, *d.PDF417ErrorCorrection)
	assert.Equal(t, 23, *d.AztecErrorCorrection)
	assert.Nil(t, d.Charset)
}

func TestNormalize_ColorModelFirst(t *testing.T) {
	r := validLinear()
	r.ColorModel = ptr(colors.CMYK)
	r.Normalize()
	assert.Equal(t, []int{0, 0, 0, 100}, r.Foreground)
	assert.Equal(t, []int{0, 0, 0, 0}, r.Background)

	r = validLinear()
	r.Foreground = []int{10, 20, 30}
	r.Normalize()
	assert.Equal(t, []int{10, 20, 30}, r.Foreground, "caller values are kept")
}

func TestNormalize_FormatSpecificOptions(t *testing.T) {
	r := validLinear()
	r.Format = ptr(export.PNG)
	r.FormatInlineSVG = ptr(true)
	r.FormatPreviewDpiEPS = ptr(300)
	r.Normalize()
	assert.False(t, *r.FormatInlineSVG)
	assert.Zero(t, *r.FormatPreviewDpiEPS)

	r = validLinear()
	r.FormatInlineSVG = ptr(true)
	r.Normalize()
	assert.True(t, *r.FormatInlineSVG)

	r = validLinear()
	r.Format = ptr(export.EPS)
	r.FormatPreviewDpiEPS = ptr(300)
	r.Normalize()
	assert.Equal(t, 300, *r.FormatPreviewDpiEPS)
}

func TestValidateLinear(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Linear)
		message string
	}{
		{"valid", func(*Linear) {}, ""},
		{"empty content allowed", func(r *Linear) { r.Content = ptr("") }, ""},
		{"missing content", func(r *Linear) { r.Content = nil }, "Content is required"},
		{"missing width", func(r *Linear) { r.Width = nil }, "Width is required"},
		{"zero width", func(r *Linear) { r.Width = ptr(0.0) }, "Width must be greater than 0"},
		{"negative height", func(r *Linear) { r.Height = ptr(-1.0) }, "Height must be greater than 0"},
		{"negative margin", func(r *Linear) { r.MarginBottom = ptr(-0.5) }, "Bottom margin must be 0 or greater"},
		{"missing format", func(r *Linear) { r.Format = nil }, "Format is required"},
		{"missing type", func(r *Linear) { r.Type = nil }, "Type is required"},
		{"fractional text offset", func(r *Linear) { r.TextOffset = ptr(-12.5) }, ""},
		{"text offset", func(r *Linear) { r.TextOffset = ptr(100.5) }, "Text offset must be between -100 and 100"},
		{"font size", func(r *Linear) { r.FontSize = ptr(-1.0) }, "Font size must be 0 (auto) or greater"},
		{"ratio low", func(r *Linear) { r.Ratio = ptr(1.9) }, "Ratio must be between 2.0 and 3.0"},
		{"ratio high", func(r *Linear) { r.Ratio = ptr(3.1) }, "Ratio must be between 2.0 and 3.0"},
		{"horizontal margins", func(r *Linear) { r.MarginLeft, r.MarginRight = ptr(20.0), ptr(20.0) },
			"Horizontal margins must be smaller than width"},
		{"vertical margins", func(r *Linear) { r.MarginTop = ptr(25.0) }, "Vertical margins must be smaller than height"},
		{"raster without dpi", func(r *Linear) { r.Format = ptr(export.PNG) }, "Raster formats require DPI between 72 and 2400"},
		{"first failure wins", func(r *Linear) { r.Width, r.Type = nil, nil }, "Width is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validLinear()
			tt.mutate(r)
			r.Normalize()
			err := ValidateLinear(r)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestValidateTwoD(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TwoD)
		message string
	}{
		{"valid", func(*TwoD) {}, ""},
		{"quiet zone", func(r *TwoD) { r.QuietZone = ptr(-1) }, "Quiet zone must be 0 or greater"},
		{"qr version", func(r *TwoD) { r.QRVersion = ptr(41) }, "QR Code version must be between 0 (AUTO) and 40"},
		{"dm size", func(r *TwoD) { r.DMSize = ptr(31) }, "DataMatrix size must be between 0 (AUTO) and 30"},
		{"pdf417 ec", func(r *TwoD) { r.PDF417ErrorCorrection = ptr(9) }, "PDF417 error correction must be between 0 and 8"},
		{"aztec size", func(r *TwoD) { r.AztecSize = ptr(-5) }, "Aztec size must be between -4 and 32, or 0 (AUTO)"},
		{"aztec ec", func(r *TwoD) { r.AztecErrorCorrection = ptr(4) }, "Aztec error correction must be between 5 and 95"},
		{"eps preview", func(r *TwoD) { r.Format = ptr(export.EPS); r.FormatPreviewDpiEPS = ptr(601) },
			"EPS preview DPI must be between 0 and 600"},
		{"declarative before pdf417", func(r *TwoD) { r.PDF417Cols = ptr(31); r.QRVersion = ptr(41) },
			"QR Code version must be between 0 (AUTO) and 40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validTwoD()
			tt.mutate(r)
			r.Normalize()
			err := ValidateTwoD(r)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestValidate_DPIBoundaries(t *testing.T) {
	for _, f := range []export.Format{export.PNG, export.BMP, export.JPG} {
		for dpi, ok := range map[int]bool{71: false, 72: true, 2400: true, 2401: false} {
			r := validTwoD()
			r.Format = ptr(f)
			r.DPI = ptr(dpi)
			r.Normalize()
			err := ValidateTwoD(r)
			assert.Equal(t, ok, err == nil, "%s at %d dpi", f, dpi)
		}
	}
	for _, f := range []export.Format{export.PDF, export.EPS, export.SVG} {
		r := validTwoD()
		r.Format = ptr(f)
		r.Normalize()
		assert.NoError(t, ValidateTwoD(r), "%s without dpi", f)
	}
}

func TestValidate_PDF417Boundaries(t *testing.T) {
	cols := map[int]bool{0: true, 1: true, 30: true, 31: false}
	for v, ok := range cols {
		r := validTwoD()
		r.PDF417Cols = ptr(v)
		r.Normalize()
		err := ValidateTwoD(r)
		assert.Equal(t, ok, err == nil, "cols %d", v)
		if !ok {
			assert.EqualError(t, err, "PDF417 columns must be 0 (AUTO) or between 1 and 30")
		}
	}
	rows := map[int]bool{0: true, 2: false, 3: true, 90: true, 91: false}
	for v, ok := range rows {
		r := validTwoD()
		r.PDF417Rows = ptr(v)
		r.Normalize()
		err := ValidateTwoD(r)
		assert.Equal(t, ok, err == nil, "rows %d", v)
		if !ok {
			assert.EqualError(t, err, "PDF417 rows must be 0 (AUTO) or between 3 and 90")
		}
	}
}

func TestDecode(t *testing.T) {
	r, err := DecodeLinear(strings.NewReader(`{"content":"123","width":30,"height":10,"format":"PNG","dpi":300,"type":"CODE128","addon":"12","foreground":[1,2,3]}`))
	require.NoError(t, err)
	assert.Equal(t, "123", *r.Content)
	assert.Equal(t, export.PNG, *r.Format)
	assert.Equal(t, symbol.Code128, *r.Type)
	assert.Equal(t, "12", *r.AddOn)
	assert.Equal(t, []int{1, 2, 3}, r.Foreground)

	r, err = DecodeLinear(strings.NewReader(`{"type":"CODE128","textOffset":12.5}`))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, *r.TextOffset, 1e-9)

	d, err := DecodeTwoD(strings.NewReader(`{"type":"DATAMATRIX_GS1","dmShape":"SQUARE","qrErrorCorrection":"Q","charset":"UTF-8","transform":"ROTATE_90","colorModel":"CMYK"}`))
	require.NoError(t, err)
	assert.Equal(t, symbol.DataMatrixGS1, *d.Type)
	assert.Equal(t, symbol.DMShapeSquare, *d.DMShape)
	assert.Equal(t, symbol.QRLevelQ, *d.QRErrorCorrection)
	assert.Equal(t, "UTF-8", *d.Charset)
	assert.Equal(t, export.Rotate90, *d.Transform)
	assert.Equal(t, colors.CMYK, *d.ColorModel)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"empty", ``, "Request body is empty"},
		{"syntax", `{"content":}`, "Malformed JSON"},
		{"truncated", `{"content":"x"`, "Malformed JSON"},
		{"wrong type", `{"width":"wide"}`, `Invalid value for field "width"`},
		{"unknown enum", `{"format":"GIF"}`, `unknown format "GIF"`},
		{"unknown type", `{"type":"QR"}`, `unknown 1D type "QR"`},
		{"trailing data", `{} {}`, "unexpected data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLinear(strings.NewReader(tt.body))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
			assert.Contains(t, ve.Message, tt.contains)
		})
	}
}

func TestDecode_BodyLimit(t *testing.T) {
	body := `{"content":"` + strings.Repeat("x", 64) + `"}`
	limited := http.MaxBytesReader(httptest.NewRecorder(), io.NopCloser(strings.NewReader(body)), 8)
	_, err := DecodeTwoD(limited)
	var mbe *http.MaxBytesError
	assert.True(t, errors.As(err, &mbe), "got %v", err)
}
