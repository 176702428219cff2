package symbol

import (
	"math"

	"github.com/MeKo-Tech/barcoded/internal/fonts"
)

// Font heights chosen by auto-fit, as a share of the drawing height.
const (
	autoFitHeightShare = 0.15
	autoFitWidthShare  = 0.9
	textGapShare       = 0.2
)

// upcLayout describes where EAN/UPC digits are printed and which bars are
// extended guard bars. Positions are in modules relative to the first bar.
type upcLayout struct {
	left, right int
	guards      [][2]int
	groups      []digitGroup
}

type digitGroup struct {
	start    int
	from, to int
}

func (l *Linear) upcLayout() (upcLayout, bool) {
	switch l.typ {
	case EAN13, ISBN13:
		return upcLayout{
			left:   7,
			guards: [][2]int{{0, 3}, {45, 50}, {92, 95}},
			groups: []digitGroup{{start: 3, from: 1, to: 7}, {start: 50, from: 7, to: 13}},
		}, true
	case EAN8:
		return upcLayout{
			guards: [][2]int{{0, 3}, {31, 36}, {64, 67}},
			groups: []digitGroup{{start: 3, from: 0, to: 4}, {start: 36, from: 4, to: 8}},
		}, true
	case UPCA:
		return upcLayout{
			left: 7, right: 7,
			guards: [][2]int{{0, 10}, {45, 50}, {85, 95}},
			groups: []digitGroup{{start: 10, from: 1, to: 6}, {start: 50, from: 6, to: 11}},
		}, true
	case UPCE:
		return upcLayout{
			left: 7, right: 7,
			guards: [][2]int{{0, 3}, {45, 51}},
			groups: []digitGroup{{start: 3, from: 1, to: 7}},
		}, true
	}
	return upcLayout{}, false
}

// Draw renders the symbol into g.
func (l *Linear) Draw(c Canvas, g Geometry) {
	if layout, ok := l.upcLayout(); ok {
		l.drawUPC(c, g, layout)
		return
	}
	l.drawGeneric(c, g)
}

// runWidths converts the pattern into run widths in modules, applying the
// wide-to-narrow ratio.
func (l *Linear) runWidths() (widths []float64, bars []bool) {
	for i := 0; i < len(l.pattern); {
		j := i
		for j < len(l.pattern) && l.pattern[j] == l.pattern[i] {
			j++
		}
		w := float64(j - i)
		if l.wideUnits > 0 && j-i == l.wideUnits {
			w = l.ratio
		}
		widths = append(widths, w)
		bars = append(bars, l.pattern[i])
		i = j
	}
	return widths, bars
}

func (l *Linear) drawGeneric(c Canvas, g Geometry) {
	widths, bars := l.runWidths()
	units := 0.0
	for _, w := range widths {
		units += w
	}
	if units == 0 {
		return
	}
	narrow := g.snap(g.Width / units)
	mm := make([]float64, len(widths))
	total := 0.0
	for i, w := range widths {
		if w == 1 {
			mm[i] = narrow
		} else {
			mm[i] = math.Max(g.round(w*narrow), narrow)
		}
		total += mm[i]
	}
	x0 := g.X + g.round((g.Width-total)/2)

	text := l.Text()
	barY, barH := g.Y, g.Height
	var face fonts.Face
	var baseline float64
	if l.textVisible && text != "" {
		face = l.fitFace(g, text, total)
		th := face.CapHeight()
		gap := th * (textGapShare + l.textOffset/100)
		band := th + gap
		if band > g.Height*0.8 {
			band = g.Height * 0.8
		}
		barH = g.Height - math.Max(band, 0)
		if l.textOnTop {
			barY = g.Y + g.Height - barH
			baseline = g.Y + th
		} else {
			baseline = g.Y + barH + gap + th
		}
	}

	x := x0
	for i, w := range mm {
		if bars[i] {
			c.FillRect(x, barY, w, barH)
		}
		x += w
	}
	if l.textVisible && text != "" {
		c.DrawText(text, x0+(total-face.Width(text))/2, baseline, face)
	}
}

func (l *Linear) drawUPC(c Canvas, g Geometry, layout upcLayout) {
	modules := layout.left + len(l.pattern) + layout.right
	if len(l.addOnPattern) > 0 {
		modules += addOnGap + len(l.addOnPattern)
	}
	m := g.snap(g.Width / float64(modules))
	total := m * float64(modules)
	x0 := g.X + g.round((g.Width-total)/2)
	barsX := x0 + float64(layout.left)*m

	top := g.Y
	height := g.Height
	if !l.textVisible {
		l.fillPattern(c, l.pattern, nil, barsX, m, top, height, height)
		if len(l.addOnPattern) > 0 {
			l.fillPattern(c, l.addOnPattern, nil, l.addOnX(layout, barsX, m), m, top, height, height)
		}
		return
	}

	face := l.fitUPCFace(g, m)
	th := face.CapHeight()
	gap := th * (textGapShare + l.textOffset/100)

	if l.typ == ISBN13 {
		label := isbnLabel(l.digits)
		mainW := float64(len(l.pattern)) * m
		c.DrawText(label, barsX+(mainW-face.Width(label))/2, top+th, face)
		top += th + gap
		height -= th + gap
	}

	barH := math.Max(height-th-gap, height*0.2)
	guardH := math.Min(barH+gap+th/2, height)
	baseline := top + barH + gap + th
	l.fillPattern(c, l.pattern, layout.guards, barsX, m, top, barH, guardH)

	digitW := func(s string) float64 { return face.Width(s) }
	for _, grp := range layout.groups {
		for i := grp.from; i < grp.to; i++ {
			d := l.digits[i : i+1]
			cx := barsX + (float64(grp.start+7*(i-grp.from))+3.5)*m
			c.DrawText(d, cx-digitW(d)/2, baseline, face)
		}
	}
	if layout.left > 0 {
		d := l.digits[:1]
		cx := x0 + float64(layout.left)*m/2
		c.DrawText(d, cx-digitW(d)/2, baseline, face)
	}
	if layout.right > 0 {
		d := l.digits[len(l.digits)-1:]
		cx := barsX + (float64(len(l.pattern))+float64(layout.right)/2)*m
		c.DrawText(d, cx-digitW(d)/2, baseline, face)
	}

	if len(l.addOnPattern) > 0 {
		ax := l.addOnX(layout, barsX, m)
		addTop := top + th + gap
		l.fillPattern(c, l.addOnPattern, nil, ax, m, addTop, guardH-(addTop-top), 0)
		for i := 0; i < len(l.addOn); i++ {
			d := l.addOn[i : i+1]
			cx := ax + (float64(4+9*i)+3.5)*m
			c.DrawText(d, cx-digitW(d)/2, top+th, face)
		}
	}
}

func (l *Linear) addOnX(layout upcLayout, barsX, m float64) float64 {
	return barsX + float64(len(l.pattern)+layout.right+addOnGap)*m
}

// fillPattern draws the bars of p starting at x. Bars starting inside one of
// the guard ranges get guardH instead of barH.
func (l *Linear) fillPattern(c Canvas, p []bool, guards [][2]int, x, m, y, barH, guardH float64) {
	for i := 0; i < len(p); {
		if !p[i] {
			i++
			continue
		}
		j := i
		for j < len(p) && p[j] {
			j++
		}
		h := barH
		for _, gr := range guards {
			if i >= gr[0] && i < gr[1] {
				h = guardH
				break
			}
		}
		c.FillRect(x+float64(i)*m, y, float64(j-i)*m, h)
		i = j
	}
}

// fitFace returns the face for generic symbols, sizing it to the bars when
// auto-fit is on.
func (l *Linear) fitFace(g Geometry, text string, barsWidth float64) fonts.Face {
	if !l.autoFit {
		return l.face
	}
	unit := l.face.WithSize(1)
	size := sizeForHeight(unit, g.Height*autoFitHeightShare)
	if w := unit.Width(text); w > 0 {
		size = math.Min(size, barsWidth*autoFitWidthShare/w)
	}
	return l.face.WithSize(size)
}

// fitUPCFace sizes digits to fit their 7-module cells.
func (l *Linear) fitUPCFace(g Geometry, m float64) fonts.Face {
	if !l.autoFit {
		return l.face
	}
	unit := l.face.WithSize(1)
	size := sizeForHeight(unit, g.Height*autoFitHeightShare)
	if w := unit.Width("0"); w > 0 {
		size = math.Min(size, 7*m*autoFitWidthShare/w)
	}
	return l.face.WithSize(size)
}

func sizeForHeight(unit fonts.Face, height float64) float64 {
	if ch := unit.CapHeight(); ch > 0 {
		return height / ch
	}
	return height
}

// isbnLabel formats the digits as "ISBN 978-xxxxxxxxx-c".
func isbnLabel(digits string) string {
	if len(digits) != 13 {
		return "ISBN " + digits
	}
	return "ISBN " + digits[:3] + "-" + digits[3:12] + "-" + digits[12:]
}
