// Package colors resolves the raw channel lists of a request into colors of
// the RGB or CMYK color model.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Model is the color model used for foreground, background and output.
type Model int

const (
	RGB Model = iota
	CMYK
)

func (m Model) String() string {
	if m == CMYK {
		return "CMYK"
	}
	return "RGB"
}

// ParseModel parses a model name case-insensitively.
func ParseModel(s string) (Model, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RGB":
		return RGB, nil
	case "CMYK":
		return CMYK, nil
	}
	return RGB, fmt.Errorf("unknown color model %q", s)
}

func (m Model) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Model) UnmarshalText(b []byte) error {
	parsed, err := ParseModel(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Channel limits per model.
const (
	MaxRGB  = 255
	MaxCMYK = 100
)

var (
	ErrRGBChannels  = errors.New("RGB colors must have exactly 3 values [R,G,B]")
	ErrCMYKChannels = errors.New("CMYK colors must have exactly 4 values [C,M,Y,K]")
)

// Color is a validated color. For RGB colors the C, M, Y and K fields are
// zero, for CMYK colors R, G and B are zero.
type Color struct {
	Model      Model
	R, G, B    uint8
	C, M, Y, K uint8
}

// NewRGB returns a validated RGB color.
func NewRGB(r, g, b int) (Color, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > MaxRGB {
			return Color{}, fmt.Errorf("Color value out of range: %d (allowed 0..%d)", v, MaxRGB)
		}
	}
	return Color{Model: RGB, R: uint8(r), G: uint8(g), B: uint8(b)}, nil //nolint:gosec // G115: range checked above
}

// NewCMYK returns a validated CMYK color with channels in percent.
func NewCMYK(c, m, y, k int) (Color, error) {
	for _, v := range []int{c, m, y, k} {
		if v < 0 || v > MaxCMYK {
			return Color{}, fmt.Errorf("Color value out of range: %d (allowed 0..%d)", v, MaxCMYK)
		}
	}
	return Color{Model: CMYK, C: uint8(c), M: uint8(m), Y: uint8(y), K: uint8(k)}, nil //nolint:gosec // G115: range checked above
}

// Resolve converts a channel list into a color of the given model.
func Resolve(channels []int, model Model) (Color, error) {
	if model == RGB {
		if len(channels) != 3 {
			return Color{}, ErrRGBChannels
		}
		return NewRGB(channels[0], channels[1], channels[2])
	}
	if len(channels) != 4 {
		return Color{}, ErrCMYKChannels
	}
	return NewCMYK(channels[0], channels[1], channels[2], channels[3])
}

// Defaults returns the default foreground (black) and background (white)
// channel lists of a model.
func Defaults(model Model) (fg, bg []int) {
	if model == CMYK {
		return []int{0, 0, 0, 100}, []int{0, 0, 0, 0}
	}
	return []int{0, 0, 0}, []int{255, 255, 255}
}

// NRGBA converts the color to an 8-bit RGB color with the given alpha.
// CMYK colors use the naive conversion without a color profile.
func (c Color) NRGBA(alpha uint8) color.NRGBA {
	if c.Model == RGB {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
	}
	k := 1 - float64(c.K)/MaxCMYK
	conv := func(v uint8) uint8 {
		return uint8(math.Round(255 * (1 - float64(v)/MaxCMYK) * k))
	}
	return color.NRGBA{R: conv(c.C), G: conv(c.M), B: conv(c.Y), A: alpha}
}

// CMYKFractions returns the CMYK channels in 0..1. RGB colors are converted.
func (c Color) CMYKFractions() (cc, m, y, k float64) {
	if c.Model == CMYK {
		return float64(c.C) / MaxCMYK, float64(c.M) / MaxCMYK, float64(c.Y) / MaxCMYK, float64(c.K) / MaxCMYK
	}
	r, g, b := float64(c.R)/MaxRGB, float64(c.G)/MaxRGB, float64(c.B)/MaxRGB
	k = 1 - math.Max(r, math.Max(g, b))
	if k >= 1 {
		return 0, 0, 0, 1
	}
	return (1 - r - k) / (1 - k), (1 - g - k) / (1 - k), (1 - b - k) / (1 - k), k
}

// RGBFractions returns the RGB channels in 0..1.
func (c Color) RGBFractions() (r, g, b float64) {
	n := c.NRGBA(255)
	return float64(n.R) / MaxRGB, float64(n.G) / MaxRGB, float64(n.B) / MaxRGB
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	n := c.NRGBA(255)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
