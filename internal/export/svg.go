package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const svgProlog = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n"

// writeSVG writes the document in millimetre user units. Inline output omits
// the XML prolog so it can be embedded in HTML.
func writeSVG(w io.Writer, d *Document, inline bool) error {
	var b strings.Builder
	pw, ph := d.PageSize()
	if !inline {
		b.WriteString(svgProlog)
	}
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%smm" height="%smm" viewBox="0 0 %s %s">`+"\n",
		num(pw), num(ph), num(pw), num(ph))
	if d.Title != "" {
		fmt.Fprintf(&b, "<title>%s</title>\n", escape(d.Title))
	}
	if d.Creator != "" {
		fmt.Fprintf(&b, "<desc>Created with %s</desc>\n", escape(d.Creator))
	}
	if d.paintsBackground(SVG) {
		fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(pw), num(ph), d.Background.Hex())
	}

	fmt.Fprintf(&b, `<g fill="%s"`, d.Foreground.Hex())
	if m := d.matrix(); m != [6]float64{1, 0, 0, 1, 0, 0} {
		fmt.Fprintf(&b, ` transform="matrix(%s %s %s %s %s %s)"`, num(m[0]), num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]))
	}
	b.WriteString(">\n")
	for _, r := range d.rects {
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s"/>`+"\n", num(r.x), num(r.y), num(r.w), num(r.h))
	}
	for _, t := range d.texts {
		fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="%s" font-size="%s">%s</text>`+"\n",
			num(t.x), num(t.baseline), escape(t.face.Family), num(t.face.Size), escape(t.text))
	}
	b.WriteString("</g>\n</svg>\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// num formats a length with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
