package fonts

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Face is a font family at a size. Sizes and metrics are in millimetres.
// A Face is a value; it is safe for concurrent use.
type Face struct {
	Family string
	Size   float64
	font   *sfnt.Font
}

// NewFace returns a face for a parsed font.
func NewFace(family string, f *sfnt.Font, size float64) Face {
	return Face{Family: family, Size: size, font: f}
}

// Font returns the parsed font.
func (f Face) Font() *sfnt.Font { return f.font }

// WithSize returns a copy of f at a different size.
func (f Face) WithSize(size float64) Face {
	f.Size = size
	return f
}

// unitScale converts font units to millimetres at the face size.
func (f Face) unitScale() float64 {
	return f.Size / float64(f.font.UnitsPerEm())
}

// ppem asks sfnt for unscaled values: one pixel per font unit.
func (f Face) ppem() fixed.Int26_6 {
	return fixed.Int26_6(f.font.UnitsPerEm()) << 6
}

// Width returns the advance width of text including kerning.
func (f Face) Width(text string) float64 {
	if f.font == nil || text == "" {
		return 0
	}
	var (
		buf   sfnt.Buffer
		total fixed.Int26_6
		prev  sfnt.GlyphIndex
	)
	ppem := f.ppem()
	for i, r := range []rune(text) {
		idx, err := f.font.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		if i > 0 {
			if k, err := f.font.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				total += k
			}
		}
		adv, err := f.font.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err == nil {
			total += adv
		}
		prev = idx
	}
	return float64(total) / 64 * f.unitScale()
}

// Ascent returns the distance from the baseline to the top of the glyphs.
func (f Face) Ascent() float64 {
	m, ok := f.metrics()
	if !ok {
		return f.Size * 0.8
	}
	return float64(m.Ascent) / 64 * f.unitScale()
}

// Descent returns the distance from the baseline to the bottom of the glyphs.
func (f Face) Descent() float64 {
	m, ok := f.metrics()
	if !ok {
		return f.Size * 0.2
	}
	return float64(m.Descent) / 64 * f.unitScale()
}

// CapHeight returns the height of capital letters and digits.
func (f Face) CapHeight() float64 {
	m, ok := f.metrics()
	if !ok || m.CapHeight <= 0 {
		return f.Ascent() * 0.9
	}
	return float64(m.CapHeight) / 64 * f.unitScale()
}

func (f Face) metrics() (font.Metrics, bool) {
	if f.font == nil {
		return font.Metrics{}, false
	}
	var buf sfnt.Buffer
	m, err := f.font.Metrics(&buf, f.ppem(), font.HintingNone)
	if err != nil {
		return font.Metrics{}, false
	}
	return m, true
}

// canDisplay reports whether the font has glyphs for all runes.
func canDisplay(f *sfnt.Font, runes ...rune) bool {
	var buf sfnt.Buffer
	for _, r := range runes {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}
