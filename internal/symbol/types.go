package symbol

import "fmt"

// LinearType enumerates the supported linear symbologies.
type LinearType int

const (
	Code128 LinearType = iota
	EAN128
	Code39
	Codabar
	ITF
	ITF14
	EAN13
	EAN8
	UPCA
	UPCE
	ISBN13
)

// LinearInfo describes the capabilities of a linear type.
type LinearInfo struct {
	Name             string
	TypeName         string
	ShortName        string
	CustomText       bool
	AddOn            bool
	TextOnTop        bool
	Ratio            bool
	AutoCompletion   bool
	OptionalChecksum bool
}

var linearInfos = [...]LinearInfo{
	Code128: {Name: "CODE128", TypeName: "Code 128", ShortName: "128", CustomText: true, TextOnTop: true},
	EAN128:  {Name: "EAN128", TypeName: "GS1-128", ShortName: "GS1-128", CustomText: true, TextOnTop: true},
	Code39:  {Name: "CODE39", TypeName: "Code 39", ShortName: "39", CustomText: true, TextOnTop: true, Ratio: true, OptionalChecksum: true},
	Codabar: {Name: "CODABAR", TypeName: "Codabar", ShortName: "Codabar", CustomText: true, TextOnTop: true, Ratio: true},
	ITF:     {Name: "ITF", TypeName: "Interleaved 2 of 5", ShortName: "ITF", CustomText: true, TextOnTop: true, Ratio: true, AutoCompletion: true, OptionalChecksum: true},
	ITF14:   {Name: "ITF14", TypeName: "ITF-14", ShortName: "ITF-14", TextOnTop: true, Ratio: true, AutoCompletion: true},
	EAN13:   {Name: "EAN13", TypeName: "EAN-13", ShortName: "EAN-13", AddOn: true, AutoCompletion: true},
	EAN8:    {Name: "EAN8", TypeName: "EAN-8", ShortName: "EAN-8", AddOn: true, AutoCompletion: true},
	UPCA:    {Name: "UPCA", TypeName: "UPC-A", ShortName: "UPC-A", AddOn: true, AutoCompletion: true},
	UPCE:    {Name: "UPCE", TypeName: "UPC-E", ShortName: "UPC-E", AddOn: true, AutoCompletion: true},
	ISBN13:  {Name: "ISBN13", TypeName: "ISBN-13", ShortName: "ISBN", AddOn: true, AutoCompletion: true},
}

// LinearTypes returns all linear types in declaration order.
func LinearTypes() []LinearType {
	out := make([]LinearType, len(linearInfos))
	for i := range linearInfos {
		out[i] = LinearType(i)
	}
	return out
}

func (t LinearType) valid() bool { return t >= 0 && int(t) < len(linearInfos) }

// Info returns the capability table entry of t.
func (t LinearType) Info() LinearInfo {
	if !t.valid() {
		return LinearInfo{Name: fmt.Sprintf("LinearType(%d)", int(t))}
	}
	return linearInfos[t]
}

func (t LinearType) String() string { return t.Info().Name }

// Properties returns the capability flags published by the metadata endpoint.
func (t LinearType) Properties() map[string]any {
	i := t.Info()
	return map[string]any{
		"typeName":         i.TypeName,
		"shortName":        i.ShortName,
		"customText":       i.CustomText,
		"addOn":            i.AddOn,
		"textOnTop":        i.TextOnTop,
		"ratio":            i.Ratio,
		"autoCompletion":   i.AutoCompletion,
		"optionalChecksum": i.OptionalChecksum,
	}
}

// ParseLinearType resolves a type by name.
func ParseLinearType(s string) (LinearType, error) {
	for i, info := range linearInfos {
		if info.Name == s {
			return LinearType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown 1D type %q", s)
}

func (t LinearType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown 1D type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *LinearType) UnmarshalText(b []byte) error {
	v, err := ParseLinearType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TwoDType enumerates the supported two-dimensional symbologies.
type TwoDType int

const (
	QRCode TwoDType = iota
	QRCodeGS1
	DataMatrix
	DataMatrixGS1
	PDF417
	Aztec
)

// TwoDInfo describes a 2D type.
type TwoDInfo struct {
	Name             string
	TypeName         string
	GS1              bool
	DefaultQuietZone int
}

var twoDInfos = [...]TwoDInfo{
	QRCode:        {Name: "QRCODE", TypeName: "QR Code", DefaultQuietZone: 4},
	QRCodeGS1:     {Name: "QRCODE_GS1", TypeName: "GS1 QR Code", GS1: true, DefaultQuietZone: 4},
	DataMatrix:    {Name: "DATAMATRIX", TypeName: "DataMatrix", DefaultQuietZone: 1},
	DataMatrixGS1: {Name: "DATAMATRIX_GS1", TypeName: "GS1 DataMatrix", GS1: true, DefaultQuietZone: 1},
	PDF417:        {Name: "PDF417", TypeName: "PDF417", DefaultQuietZone: 2},
	Aztec:         {Name: "AZTEC", TypeName: "Aztec", DefaultQuietZone: 0},
}

// TwoDTypes returns all 2D types in declaration order.
func TwoDTypes() []TwoDType {
	out := make([]TwoDType, len(twoDInfos))
	for i := range twoDInfos {
		out[i] = TwoDType(i)
	}
	return out
}

func (t TwoDType) valid() bool { return t >= 0 && int(t) < len(twoDInfos) }

// Info returns the table entry of t.
func (t TwoDType) Info() TwoDInfo {
	if !t.valid() {
		return TwoDInfo{Name: fmt.Sprintf("TwoDType(%d)", int(t))}
	}
	return twoDInfos[t]
}

func (t TwoDType) String() string { return t.Info().Name }

// IsGS1 reports whether content is GS1 element strings.
func (t TwoDType) IsGS1() bool { return t.Info().GS1 }

// Properties returns the flags published by the metadata endpoint.
func (t TwoDType) Properties() map[string]any {
	i := t.Info()
	return map[string]any{
		"typeName":         i.TypeName,
		"gs1":              i.GS1,
		"defaultQuietZone": i.DefaultQuietZone,
	}
}

// ParseTwoDType resolves a type by name.
func ParseTwoDType(s string) (TwoDType, error) {
	for i, info := range twoDInfos {
		if info.Name == s {
			return TwoDType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown 2D type %q", s)
}

func (t TwoDType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown 2D type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *TwoDType) UnmarshalText(b []byte) error {
	v, err := ParseTwoDType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// QRErrorCorrection is the QR Code error correction level.
type QRErrorCorrection int

const (
	QRLevelL QRErrorCorrection = iota
	QRLevelM
	QRLevelQ
	QRLevelH
)

var qrLevelNames = [...]string{"L", "M", "Q", "H"}

func (l QRErrorCorrection) String() string {
	if l < 0 || int(l) >= len(qrLevelNames) {
		return fmt.Sprintf("QRErrorCorrection(%d)", int(l))
	}
	return qrLevelNames[l]
}

func (l QRErrorCorrection) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *QRErrorCorrection) UnmarshalText(b []byte) error {
	for i, n := range qrLevelNames {
		if n == string(b) {
			*l = QRErrorCorrection(i)
			return nil
		}
	}
	return fmt.Errorf("unknown QR error correction level %q", string(b))
}

// DMShape restricts the DataMatrix symbol shape when the size is automatic.
type DMShape int

const (
	DMShapeAuto DMShape = iota
	DMShapeSquare
	DMShapeRectangle
)

var dmShapeNames = [...]string{"AUTO", "SQUARE", "RECTANGLE"}

func (s DMShape) String() string {
	if s < 0 || int(s) >= len(dmShapeNames) {
		return fmt.Sprintf("DMShape(%d)", int(s))
	}
	return dmShapeNames[s]
}

func (s DMShape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DMShape) UnmarshalText(b []byte) error {
	for i, n := range dmShapeNames {
		if n == string(b) {
			*s = DMShape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown DataMatrix shape %q", string(b))
}
