package export

import (
	"fmt"
	"strings"
)

// Format is an output container.
type Format int

const (
	PDF Format = iota
	EPS
	SVG
	PNG
	BMP
	JPG
)

// FormatInfo describes an output format.
type FormatInfo struct {
	Name         string
	ContentType  string
	Raster       bool
	Transparency bool
	CMYK         bool
}

var formatInfos = [...]FormatInfo{
	PDF: {Name: "PDF", ContentType: "application/pdf", Transparency: true},
	EPS: {Name: "EPS", ContentType: "application/postscript", CMYK: true},
	SVG: {Name: "SVG", ContentType: "image/svg+xml", Transparency: true},
	PNG: {Name: "PNG", ContentType: "image/png", Raster: true, Transparency: true},
	BMP: {Name: "BMP", ContentType: "image/bmp", Raster: true},
	JPG: {Name: "JPG", ContentType: "image/jpeg", Raster: true},
}

// Formats returns all formats in declaration order.
func Formats() []Format {
	out := make([]Format, len(formatInfos))
	for i := range formatInfos {
		out[i] = Format(i)
	}
	return out
}

func (f Format) valid() bool { return f >= 0 && int(f) < len(formatInfos) }

// Info returns the table entry of f.
func (f Format) Info() FormatInfo {
	if !f.valid() {
		return FormatInfo{Name: fmt.Sprintf("Format(%d)", int(f))}
	}
	return formatInfos[f]
}

func (f Format) String() string { return f.Info().Name }

// Raster reports whether the format is pixel based and needs a DPI.
func (f Format) Raster() bool { return f.Info().Raster }

// ContentType returns the MIME type.
func (f Format) ContentType() string { return f.Info().ContentType }

// Extension returns the lowercase file extension without dot.
func (f Format) Extension() string { return strings.ToLower(f.Info().Name) }

// Properties returns the flags published by the metadata endpoint.
func (f Format) Properties() map[string]any {
	i := f.Info()
	return map[string]any{
		"contentType":  i.ContentType,
		"raster":       i.Raster,
		"transparency": i.Transparency,
		"cmyk":         i.CMYK,
	}
}

// ParseFormat resolves a format by name.
func ParseFormat(s string) (Format, error) {
	for i, info := range formatInfos {
		if info.Name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.valid() {
		return nil, fmt.Errorf("unknown format %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Filename builds the attachment name: the type name with spaces replaced
// by hyphens plus the format extension.
func Filename(typeName string, f Format) string {
	return strings.ReplaceAll(typeName, " ", "-") + "." + f.Extension()
}

// Transform rotates (clockwise) or mirrors the finished image.
type Transform int

const (
	Rotate0 Transform = iota
	Rotate90
	Rotate180
	Rotate270
	FlipHorizontal
	FlipVertical
)

var transformNames = [...]string{"ROTATE_0", "ROTATE_90", "ROTATE_180", "ROTATE_270", "FLIP_HORIZONTAL", "FLIP_VERTICAL"}

func (t Transform) String() string {
	if t < 0 || int(t) >= len(transformNames) {
		return fmt.Sprintf("Transform(%d)", int(t))
	}
	return transformNames[t]
}

// SwapsAxes reports whether the transform exchanges width and height.
func (t Transform) SwapsAxes() bool { return t == Rotate90 || t == Rotate270 }

func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Transform) UnmarshalText(b []byte) error {
	for i, n := range transformNames {
		if n == string(b) {
			*t = Transform(i)
			return nil
		}
	}
	return fmt.Errorf("unknown transform %q", string(b))
}
