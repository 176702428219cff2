package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/MeKo-Tech/barcoded/internal/colors"
)

// epsiLineLength is the hex digits per preview line.
const epsiLineLength = 64

const epsProlog = `%%BeginProlog
/reencode { findfont dup length dict begin { 1 index /FID ne { def } { pop pop } ifelse } forall
  /Encoding ISOLatin1Encoding def currentdict end definefont pop } bind def
/Helvetica-Latin1 /Helvetica reencode
/Courier-Latin1 /Courier reencode
%%EndProlog
`

// writeEPS writes an EPSF-3.0 file. Colors keep their model, so CMYK
// requests produce setcmykcolor. A positive previewDPI adds an EPSI preview.
func writeEPS(w io.Writer, d *Document, previewDPI int) error {
	var b strings.Builder
	pw, ph := d.PageSize()
	wpt, hpt := points(pw), points(ph)

	b.WriteString("%!PS-Adobe-3.0 EPSF-3.0\n")
	fmt.Fprintf(&b, "%%%%BoundingBox: 0 0 %d %d\n", ceil(wpt), ceil(hpt))
	fmt.Fprintf(&b, "%%%%HiResBoundingBox: 0 0 %s %s\n", num(wpt), num(hpt))
	if d.Title != "" {
		fmt.Fprintf(&b, "%%%%Title: %s\n", d.Title)
	}
	if d.Creator != "" {
		fmt.Fprintf(&b, "%%%%Creator: %s\n", d.Creator)
	}
	b.WriteString("%%LanguageLevel: 2\n%%Pages: 1\n%%EndComments\n")
	if previewDPI > 0 {
		if err := writeEPSIPreview(&b, d, previewDPI); err != nil {
			return err
		}
	}
	b.WriteString(epsProlog)
	b.WriteString("%%Page: 1 1\ngsave\n")

	fmt.Fprintf(&b, "%s 0 0 %s %s rectfill\n", psColor(d.Background), num(wpt), num(hpt))

	// Document millimetres, y down, mapped onto page points, y up.
	m := d.matrix()
	k := points(1)
	fmt.Fprintf(&b, "[%s %s %s %s %s %s] concat\n",
		num(k*m[0]), num(-k*m[1]), num(k*m[2]), num(-k*m[3]), num(k*m[4]), num(k*(ph-m[5])))
	b.WriteString(psColor(d.Foreground) + "\n")
	for _, r := range d.rects {
		fmt.Fprintf(&b, "%s %s %s %s rectfill\n", num(r.x), num(r.y), num(r.w), num(r.h))
	}
	for _, t := range d.texts {
		fmt.Fprintf(&b, "gsave %s %s translate 1 -1 scale /%s findfont %s scalefont setfont 0 0 moveto (%s) show grestore\n",
			num(t.x), num(t.baseline), psFont(t.face.Family), num(t.face.Size), psString(t.text))
	}
	b.WriteString("grestore\nshowpage\n%%Trailer\n%%EOF\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write eps: %w", err)
	}
	return nil
}

// writeEPSIPreview appends a one bit preview of the page at dpi.
func writeEPSIPreview(b *strings.Builder, d *Document, dpi int) error {
	img, release, err := rasterize(d, EPS, dpi)
	if err != nil {
		return fmt.Errorf("eps preview: %w", err)
	}
	defer release()

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rowBytes := (w + 7) / 8
	var lines []string
	row := make([]byte, rowBytes)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		clear(row)
		for x := 0; x < w; x++ {
			if luminance(img.At(bounds.Min.X+x, y)) < 128 {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		hex := fmt.Sprintf("%X", row)
		for len(hex) > epsiLineLength {
			lines = append(lines, hex[:epsiLineLength])
			hex = hex[epsiLineLength:]
		}
		lines = append(lines, hex)
	}

	fmt.Fprintf(b, "%%%%BeginPreview: %d %d 1 %d\n", w, h, len(lines))
	for _, l := range lines {
		b.WriteString("% " + l + "\n")
	}
	b.WriteString("%%EndPreview\n")
	return nil
}

// ceil rounds up to whole points, ignoring float noise below 1e-4.
func ceil(v float64) int {
	return int(math.Ceil(math.Round(v*1e4) / 1e4))
}

func psColor(c colors.Color) string {
	if c.Model == colors.CMYK {
		cc, m, y, k := c.CMYKFractions()
		return fmt.Sprintf("%s %s %s %s setcmykcolor", num(cc), num(m), num(y), num(k))
	}
	r, g, bl := c.RGBFractions()
	return fmt.Sprintf("%s %s %s setrgbcolor", num(r), num(g), num(bl))
}

// psFont maps a font family onto a base PostScript font.
func psFont(family string) string {
	if strings.Contains(strings.ToLower(family), "mono") {
		return "Courier-Latin1"
	}
	return "Helvetica-Latin1"
}

// psString escapes text for a PostScript string literal in ISO Latin-1.
// Characters outside Latin-1 become '?'.
func psString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r >= 32 && r < 127:
			b.WriteRune(r)
		case r < 256:
			fmt.Fprintf(&b, "\\%03o", r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
