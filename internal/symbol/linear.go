package symbol

import (
	"strings"

	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/ericlevine/zxinggo/bitutil"
	"github.com/ericlevine/zxinggo/oned"

	"github.com/MeKo-Tech/barcoded/internal/fonts"
	"github.com/MeKo-Tech/barcoded/internal/gs1"
	"github.com/MeKo-Tech/barcoded/internal/i18n"
)

// DefaultRatio is the wide-to-narrow ratio used when none is set.
const DefaultRatio = 2.5

// addOnGap is the space between the main symbol and the add-on in modules.
const addOnGap = 9

const code39Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

// Linear is a built linear symbol.
type Linear struct {
	typ     LinearType
	pattern []bool
	// wideUnits is the module count zxinggo uses for a wide element; zero
	// for types with fixed module widths.
	wideUnits int

	text     string
	checksum string
	digits   string

	addOn        string
	addOnPattern []bool

	textVisible  bool
	textOnTop    bool
	showChecksum bool
	textOffset   float64
	ratio        float64
	face         fonts.Face
	autoFit      bool
}

var _ Symbol = (*Linear)(nil)

// NewLinear validates content for the type and encodes it. autoComplete adds
// missing check digits (and a leading zero for ITF); appendChecksum adds the
// optional checksum of Code 39 and ITF. Errors are *i18n.Error values.
func NewLinear(t LinearType, content string, autoComplete, appendChecksum bool) (*Linear, error) {
	if !t.valid() {
		return nil, i18n.Errorf("Unknown type: %d", "Unbekannter Typ: %d", int(t))
	}
	if content == "" {
		return nil, errEmpty()
	}
	l := &Linear{typ: t, textVisible: true, ratio: DefaultRatio}
	var err error
	switch t {
	case Code128:
		err = l.buildCode128(content)
	case EAN128:
		err = l.buildGS1128(content)
	case Code39:
		err = l.buildCode39(content, appendChecksum)
	case Codabar:
		err = l.buildCodabar(content)
	case ITF:
		err = l.buildITF(content, autoComplete, appendChecksum)
	case ITF14:
		err = l.buildITF14(content, autoComplete)
	case EAN13, ISBN13:
		err = l.buildEAN13(content, autoComplete)
	case EAN8:
		err = l.buildEAN8(content, autoComplete)
	case UPCA:
		err = l.buildUPCA(content, autoComplete)
	case UPCE:
		err = l.buildUPCE(content, autoComplete)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// TypeName returns the human-readable type name.
func (l *Linear) TypeName() string { return l.typ.Info().TypeName }

// Type returns the symbology.
func (l *Linear) Type() LinearType { return l.typ }

// Text returns the human-readable text printed with the symbol.
func (l *Linear) Text() string {
	if l.digits != "" {
		return l.digits
	}
	if l.showChecksum {
		return l.text + l.checksum
	}
	return l.text
}

// Modules returns the encoded pattern of the main symbol, one entry per
// module, true for bars.
func (l *Linear) Modules() []bool {
	out := make([]bool, len(l.pattern))
	copy(out, l.pattern)
	return out
}

// AddOn returns the add-on digits.
func (l *Linear) AddOn() string { return l.addOn }

// SetAddOn attaches a 2 or 5 digit add-on to an EAN/UPC symbol. An empty
// value removes it.
func (l *Linear) SetAddOn(addOn string) error {
	if addOn == "" {
		l.addOn, l.addOnPattern = "", nil
		return nil
	}
	if !l.typ.Info().AddOn {
		return i18n.Errorf("%s does not support add-ons", "%s unterstützt keine Add-Ons", l.TypeName())
	}
	if err := checkDigits(addOn); err != nil {
		return err
	}
	var p []bool
	switch len(addOn) {
	case 2:
		p = encodeAddOn2(addOn)
	case 5:
		p = encodeAddOn5(addOn)
	default:
		return i18n.New("Add-on must have 2 or 5 digits", "Add-On muss 2 oder 5 Ziffern haben")
	}
	l.addOn, l.addOnPattern = addOn, p
	return nil
}

func (l *Linear) SetTextVisible(v bool) { l.textVisible = v }

// SetTextOnTop moves the text above the bars where the type supports it.
func (l *Linear) SetTextOnTop(v bool) { l.textOnTop = v && l.typ.Info().TextOnTop }

// SetTextOffset sets the distance between bars and text as a percentage of
// the font height. Negative values move the text into the bars.
func (l *Linear) SetTextOffset(percent float64) { l.textOffset = percent }

func (l *Linear) SetShowOptionalChecksum(v bool) { l.showChecksum = v }

// SetRatio sets the wide-to-narrow ratio for Code 39, Codabar and ITF types.
func (l *Linear) SetRatio(r float64) {
	if r > 0 {
		l.ratio = r
	}
}

// SetFont sets the face used for the text. With autoFit the size is chosen
// from the drawing geometry and face.Size is ignored.
func (l *Linear) SetFont(face fonts.Face, autoFit bool) {
	l.face = face
	l.autoFit = autoFit
}

func (l *Linear) buildCode128(content string) error {
	if err := checkASCII(content); err != nil {
		return err
	}
	p, err := encodeOneD(oned.NewCode128Writer(), zxinggo.FormatCode128, content)
	if err != nil {
		return err
	}
	l.pattern, l.text = p, content
	return nil
}

// buildGS1128 expects content whose variable-length fields are terminated by
// gs1.FNC1.
func (l *Linear) buildGS1128(content string) error {
	elements, err := gs1.Parse(content, gs1.FNC1)
	if err != nil {
		return err
	}
	encoded := latin1(string(gs1.FNC1) + gs1.Canonical(elements, gs1.FNC1))
	p, err := encodeOneD(oned.NewCode128Writer(), zxinggo.FormatCode128, encoded)
	if err != nil {
		return err
	}
	l.pattern, l.text = p, gs1.HumanReadable(elements)
	return nil
}

func (l *Linear) buildCode39(content string, appendChecksum bool) error {
	if err := checkASCII(content); err != nil {
		return err
	}
	encoded := content
	if appendChecksum {
		sum := 0
		for _, r := range content {
			idx := strings.IndexRune(code39Alphabet, r)
			if idx < 0 {
				return i18n.New("Optional checksum requires Code 39 base characters",
					"Optionale Prüfsumme erfordert Code-39-Basiszeichen")
			}
			sum += idx
		}
		l.checksum = string(code39Alphabet[sum%43])
		encoded += l.checksum
	}
	p, err := encodeOneD(oned.NewCode39Writer(), zxinggo.FormatCode39, encoded)
	if err != nil {
		return err
	}
	l.pattern, l.text, l.wideUnits = p, content, 2
	return nil
}

func (l *Linear) buildCodabar(content string) error {
	const allowed = "0123456789-$:/.+ABCDTN*Eabcdtne"
	for _, r := range content {
		if !strings.ContainsRune(allowed, r) {
			return errChar(r)
		}
	}
	p, err := encodeOneD(oned.NewCodabarWriter(), zxinggo.FormatCodabar, content)
	if err != nil {
		return err
	}
	l.pattern, l.text, l.wideUnits = p, content, 2
	return nil
}

func (l *Linear) buildITF(content string, autoComplete, appendChecksum bool) error {
	if err := checkDigits(content); err != nil {
		return err
	}
	digits := content
	total := len(digits)
	if appendChecksum {
		total++
	}
	if total%2 != 0 && autoComplete {
		digits = "0" + digits
	}
	if appendChecksum {
		l.checksum = checkDigitString(digits)
	}
	if (len(digits)+len(l.checksum))%2 != 0 {
		return i18n.New("ITF requires an even number of digits", "ITF erfordert eine gerade Anzahl an Ziffern")
	}
	p, err := encodeOneD(oned.NewITFWriter(), zxinggo.FormatITF, digits+l.checksum)
	if err != nil {
		return err
	}
	l.pattern, l.text, l.wideUnits = p, digits, 3
	return nil
}

func (l *Linear) buildITF14(content string, autoComplete bool) error {
	digits, err := completeDigits(l.typ, content, 14, autoComplete)
	if err != nil {
		return err
	}
	p, err := encodeOneD(oned.NewITFWriter(), zxinggo.FormatITF, digits)
	if err != nil {
		return err
	}
	l.pattern, l.text, l.wideUnits = p, digits, 3
	return nil
}

func (l *Linear) buildEAN13(content string, autoComplete bool) error {
	digits, err := completeDigits(l.typ, content, 13, autoComplete)
	if err != nil {
		return err
	}
	if l.typ == ISBN13 && !strings.HasPrefix(digits, "978") && !strings.HasPrefix(digits, "979") {
		return i18n.New("ISBN-13 must start with 978 or 979", "ISBN-13 muss mit 978 oder 979 beginnen")
	}
	p, err := oned.NewEAN13Writer().EncodeContents(digits)
	if err != nil {
		return errEncode(err)
	}
	l.pattern, l.digits = p, digits
	return nil
}

func (l *Linear) buildEAN8(content string, autoComplete bool) error {
	digits, err := completeDigits(l.typ, content, 8, autoComplete)
	if err != nil {
		return err
	}
	p, err := oned.NewEAN8Writer().EncodeContents(digits)
	if err != nil {
		return errEncode(err)
	}
	l.pattern, l.digits = p, digits
	return nil
}

func (l *Linear) buildUPCA(content string, autoComplete bool) error {
	digits, err := completeDigits(l.typ, content, 12, autoComplete)
	if err != nil {
		return err
	}
	p, err := oned.NewEAN13Writer().EncodeContents("0" + digits)
	if err != nil {
		return errEncode(err)
	}
	l.pattern, l.digits = p, digits
	return nil
}

func (l *Linear) buildUPCE(content string, autoComplete bool) error {
	if err := checkDigits(content); err != nil {
		return err
	}
	if content[0] != '0' && content[0] != '1' {
		return i18n.New("UPC-E number system must be 0 or 1", "UPC-E-Nummernsystem muss 0 oder 1 sein")
	}
	digits := content
	switch {
	case len(digits) == 7 && autoComplete:
		digits += checkDigitString(oned.ConvertUPCEtoUPCA(digits))
	case len(digits) == 8:
		if !oned.CheckStandardUPCEANChecksum(oned.ConvertUPCEtoUPCA(digits)) {
			return errCheckDigit()
		}
	default:
		return errLength(l.typ, 8)
	}
	p, err := oned.NewUPCEWriter().EncodeContents(digits)
	if err != nil {
		return errEncode(err)
	}
	l.pattern, l.digits = p, digits
	return nil
}

// completeDigits validates a numeric code of the given length whose last
// digit is a standard mod-10 check digit, computing it when autoComplete is
// set and it is missing.
func completeDigits(t LinearType, content string, length int, autoComplete bool) (string, error) {
	if err := checkDigits(content); err != nil {
		return "", err
	}
	switch {
	case len(content) == length-1 && autoComplete:
		return content + checkDigitString(content), nil
	case len(content) == length:
		if !oned.CheckStandardUPCEANChecksum(content) {
			return "", errCheckDigit()
		}
		return content, nil
	default:
		return "", errLength(t, length)
	}
}

func checkDigitString(digits string) string {
	return string(rune('0' + oned.GetStandardUPCEANChecksum(digits)))
}

// oneDWriter is the subset of the zxinggo 1D writers used here.
type oneDWriter interface {
	Encode(contents string, format zxinggo.Format, width, height int, opts *zxinggo.EncodeOptions) (*bitutil.BitMatrix, error)
}

// encodeOneD encodes with a zxinggo writer at its natural width and strips
// the quiet zone it adds.
func encodeOneD(w oneDWriter, format zxinggo.Format, contents string) ([]bool, error) {
	m, err := w.Encode(contents, format, 0, 1, nil)
	if err != nil {
		return nil, errEncode(err)
	}
	first, last := -1, -1
	for x := 0; x < m.Width(); x++ {
		if m.Get(x, 0) {
			if first < 0 {
				first = x
			}
			last = x
		}
	}
	if first < 0 {
		return nil, errEncode(zxinggo.ErrWriter)
	}
	out := make([]bool, last-first+1)
	for x := range out {
		out[x] = m.Get(first+x, 0)
	}
	return out, nil
}

// latin1 maps each rune below 256 to a single byte, the input form of the
// zxinggo Code 128 writer for FNC escapes.
func latin1(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

var (
	addOnStart     = []int{1, 1, 2}
	addOnSeparator = []int{1, 1}
	addOn5Parity   = [10]string{"GGLLL", "GLGLL", "GLLGL", "GLLLG", "LGGLL", "LLGGL", "LLLGG", "LGLGL", "LGLLG", "LLGLG"}
)

func encodeAddOn2(digits string) []bool {
	value := int(digits[0]-'0')*10 + int(digits[1]-'0')
	parity := [4]string{"LL", "LG", "GL", "GG"}[value%4]
	return encodeAddOnDigits(digits, parity)
}

func encodeAddOn5(digits string) []bool {
	sum := 0
	for i := range 5 {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += 9 * d
		}
	}
	return encodeAddOnDigits(digits, addOn5Parity[sum%10])
}

func encodeAddOnDigits(digits, parity string) []bool {
	n := 4 + len(digits)*7 + (len(digits)-1)*2
	out := make([]bool, n)
	pos := oned.AppendPattern(out, 0, addOnStart, true)
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if parity[i] == 'G' {
			d += 10
		}
		pos += oned.AppendPattern(out, pos, oned.LAndGPatterns[d], false)
		if i < len(digits)-1 {
			pos += oned.AppendPattern(out, pos, addOnSeparator, false)
		}
	}
	return out
}

func checkDigits(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return errChar(r)
		}
	}
	return nil
}

func checkASCII(s string) error {
	for _, r := range s {
		if r > 127 {
			return errChar(r)
		}
	}
	return nil
}

func errEmpty() error {
	return i18n.New("Content must not be empty", "Inhalt darf nicht leer sein")
}

func errChar(r rune) error {
	return i18n.Errorf("Invalid character: '%c'", "Ungültiges Zeichen: '%c'", r)
}

func errLength(t LinearType, digits int) error {
	return i18n.Errorf("Invalid length: %s requires %d digits", "Ungültige Länge: %s erfordert %d Ziffern",
		t.Info().TypeName, digits)
}

func errCheckDigit() error {
	return i18n.New("Invalid check digit", "Ungültige Prüfziffer")
}

func errEncode(err error) error {
	return i18n.Errorf("Content cannot be encoded (%v)", "Inhalt kann nicht kodiert werden (%v)", err)
}
