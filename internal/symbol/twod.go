package symbol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	zxinggo "github.com/ericlevine/zxinggo"
	aztecenc "github.com/ericlevine/zxinggo/aztec/encoder"
	"github.com/ericlevine/zxinggo/bitutil"
	dmenc "github.com/ericlevine/zxinggo/datamatrix/encoder"
	"github.com/ericlevine/zxinggo/pdf417"
	"github.com/ericlevine/zxinggo/qrcode/decoder"
	qrenc "github.com/ericlevine/zxinggo/qrcode/encoder"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// PDF417 rows are drawn this many modules high.
const pdf417RowHeight = 3

// dmFNC1 is the DataMatrix FNC1 codeword.
const dmFNC1 = 232

// dmSizes lists the DataMatrix symbol sizes selectable by number, squares
// first, as width x height.
var dmSizes = [...][2]int{
	{10, 10}, {12, 12}, {14, 14}, {16, 16}, {18, 18}, {20, 20}, {22, 22}, {24, 24},
	{26, 26}, {32, 32}, {36, 36}, {40, 40}, {44, 44}, {48, 48}, {52, 52}, {64, 64},
	{72, 72}, {80, 80}, {88, 88}, {96, 96}, {104, 104}, {120, 120}, {132, 132}, {144, 144},
	{18, 8}, {32, 8}, {26, 12}, {36, 12}, {36, 16}, {48, 16},
}

// DMSizeCount is the highest selectable DataMatrix size number.
const DMSizeCount = len(dmSizes)

// TwoDOptions are the symbology parameters of a 2D symbol. Zero values mean
// automatic selection where the symbology supports it.
type TwoDOptions struct {
	// Charset transcodes content before encoding; nil keeps UTF-8.
	Charset encoding.Encoding
	// QuietZone in modules; negative selects the type default.
	QuietZone int

	QRVersion         int
	QRErrorCorrection QRErrorCorrection

	DMSize  int
	DMShape DMShape

	PDF417Cols            int
	PDF417Rows            int
	PDF417ErrorCorrection int

	AztecSize            int
	AztecErrorCorrection int
}

// LookupCharset resolves an IANA charset name.
func LookupCharset(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: not supported", name)
	}
	return enc, nil
}

// TwoD is a built 2D symbol as a module matrix.
type TwoD struct {
	typ       TwoDType
	modules   [][]bool
	quietZone int
	// rowHeight is the module height in module widths.
	rowHeight int
}

var _ Symbol = (*TwoD)(nil)

// NewTwoD encodes content. GS1 types expect canonical content with 0x1D
// separators. Errors carry the encoder diagnostic.
func NewTwoD(t TwoDType, content string, opts TwoDOptions) (*TwoD, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown 2D type %d", int(t))
	}
	data := content
	if opts.Charset != nil && !t.IsGS1() {
		s, err := opts.Charset.NewEncoder().String(content)
		if err != nil {
			return nil, fmt.Errorf("transcode content: %w", err)
		}
		data = s
	}
	if data == "" {
		return nil, errors.New("empty content")
	}

	sym := &TwoD{typ: t, quietZone: opts.QuietZone, rowHeight: 1}
	if sym.quietZone < 0 {
		sym.quietZone = t.Info().DefaultQuietZone
	}
	var err error
	switch t {
	case QRCode, QRCodeGS1:
		sym.modules, err = encodeQR(data, opts)
	case DataMatrix, DataMatrixGS1:
		sym.modules, err = encodeDataMatrix(data, t == DataMatrixGS1, opts)
	case PDF417:
		sym.modules, err = encodePDF417(data, opts)
		sym.rowHeight = pdf417RowHeight
	case Aztec:
		sym.modules, err = encodeAztec(data, opts)
	}
	if err != nil {
		return nil, err
	}
	return sym, nil
}

func (s *TwoD) TypeName() string { return s.typ.Info().TypeName }

// Type returns the symbology.
func (s *TwoD) Type() TwoDType { return s.typ }

// Size returns the matrix size in modules without quiet zone.
func (s *TwoD) Size() (cols, rows int) {
	if len(s.modules) == 0 {
		return 0, 0
	}
	return len(s.modules[0]), len(s.modules)
}

// Module reports whether the module at col, row is dark.
func (s *TwoD) Module(col, row int) bool { return s.modules[row][col] }

// Draw scales the matrix with its quiet zone into g, keeping modules square
// (PDF417 rows keep their height ratio) and centring the result.
func (s *TwoD) Draw(c Canvas, g Geometry) {
	cols, rows := s.Size()
	if cols == 0 {
		return
	}
	totalW := float64(cols + 2*s.quietZone)
	totalH := float64(rows*s.rowHeight + 2*s.quietZone)
	m := g.snap(min(g.Width/totalW, g.Height/totalH))
	x0 := g.X + g.round((g.Width-m*totalW)/2) + float64(s.quietZone)*m
	y0 := g.Y + g.round((g.Height-m*totalH)/2) + float64(s.quietZone)*m
	h := m * float64(s.rowHeight)
	for r := range rows {
		for col := 0; col < cols; {
			if !s.modules[r][col] {
				col++
				continue
			}
			end := col
			for end < cols && s.modules[r][end] {
				end++
			}
			c.FillRect(x0+float64(col)*m, y0+float64(r)*h, float64(end-col)*m, h)
			col = end
		}
	}
}

func encodeQR(data string, opts TwoDOptions) ([][]bool, error) {
	levels := [...]decoder.ErrorCorrectionLevel{decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ, decoder.ECLevelH}
	if opts.QRErrorCorrection < 0 || int(opts.QRErrorCorrection) >= len(levels) {
		return nil, fmt.Errorf("qr: unknown error correction %d", opts.QRErrorCorrection)
	}
	code, err := qrenc.Encode(data, levels[opts.QRErrorCorrection], opts.QRVersion, -1)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	bm := code.Matrix
	out := make([][]bool, bm.Height)
	for y := range out {
		out[y] = make([]bool, bm.Width)
		for x := range out[y] {
			out[y][x] = bm.Get(x, y) == 1
		}
	}
	return out, nil
}

func encodeAztec(data string, opts TwoDOptions) ([][]bool, error) {
	ec := opts.AztecErrorCorrection
	if ec == 0 {
		ec = 23
	}
	code, err := aztecenc.Encode([]byte(data), ec, opts.AztecSize)
	if err != nil {
		return nil, fmt.Errorf("aztec: %w", err)
	}
	return fromBitMatrix(code.Matrix, 0, 0, code.Matrix.Width(), code.Matrix.Height()), nil
}

func encodePDF417(data string, opts TwoDOptions) ([][]bool, error) {
	dims := &zxinggo.PDF417DimensionConfig{MinCols: 1, MaxCols: 30, MinRows: 3, MaxRows: 90}
	if opts.PDF417Cols > 0 {
		dims.MinCols, dims.MaxCols = opts.PDF417Cols, opts.PDF417Cols
	}
	if opts.PDF417Rows > 0 {
		dims.MinRows, dims.MaxRows = opts.PDF417Rows, opts.PDF417Rows
	}
	margin := 0
	encodeOpts := &zxinggo.EncodeOptions{
		Margin:           &margin,
		ErrorCorrection:  strconv.Itoa(opts.PDF417ErrorCorrection),
		PDF417Dimensions: dims,
	}
	w := pdf417.NewPDF417Writer()
	bm, err := w.Encode(data, zxinggo.FormatPDF417, 0, 0, encodeOpts)
	if err != nil {
		return nil, fmt.Errorf("pdf417: %w", err)
	}
	// The writer turns tall symbols sideways unless asked for a tall result.
	if bm.Width() < bm.Height() {
		if bm, err = w.Encode(data, zxinggo.FormatPDF417, 0, 1, encodeOpts); err != nil {
			return nil, fmt.Errorf("pdf417: %w", err)
		}
	}
	// Every row is repeated four times by the writer.
	const repeat = 4
	rows := bm.Height() / repeat
	out := make([][]bool, rows)
	for r := range out {
		out[r] = make([]bool, bm.Width())
		for x := range out[r] {
			out[r][x] = bm.Get(x, r*repeat)
		}
	}
	return out, nil
}

func encodeDataMatrix(data string, gs1Content bool, opts TwoDOptions) ([][]bool, error) {
	var (
		codewords []byte
		err       error
	)
	if gs1Content {
		codewords = gs1DataMatrixCodewords(data)
	} else if codewords, err = dmenc.EncodeHighLevel(data); err != nil {
		return nil, fmt.Errorf("datamatrix: %w", err)
	}

	var info *dmenc.SymbolInfo
	if opts.DMSize > 0 {
		if opts.DMSize > len(dmSizes) {
			return nil, fmt.Errorf("datamatrix: unknown size %d", opts.DMSize)
		}
		size := dmSizes[opts.DMSize-1]
		if info, err = dmenc.LookupBySize(size[0], size[1]); err != nil {
			return nil, fmt.Errorf("datamatrix: %w", err)
		}
		if info.DataCapacity < len(codewords) {
			return nil, fmt.Errorf("datamatrix: %d codewords exceed capacity %d of %dx%d",
				len(codewords), info.DataCapacity, size[0], size[1])
		}
	} else {
		shapes := [...]dmenc.SymbolShapeHint{dmenc.ShapeHintForceNone, dmenc.ShapeHintForceSquare, dmenc.ShapeHintForceRectangle}
		if info, err = dmenc.Lookup(len(codewords), shapes[opts.DMShape]); err != nil {
			return nil, fmt.Errorf("datamatrix: %w", err)
		}
	}

	full, err := dmenc.EncodeECC200(dmenc.PadCodewords(codewords, info.DataCapacity), info)
	if err != nil {
		return nil, fmt.Errorf("datamatrix: %w", err)
	}
	placement := dmenc.NewDefaultPlacement(full, info.MappingMatrixColumns(), info.MappingMatrixRows())
	placement.Place()
	return dataMatrixModules(placement, info), nil
}

// gs1DataMatrixCodewords encodes GS1 content in ASCII mode with a leading
// FNC1 and FNC1 for each group separator.
func gs1DataMatrixCodewords(data string) []byte {
	out := []byte{dmFNC1}
	b := []byte(data)
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 0x1D:
			out = append(out, dmFNC1)
		case isASCIIDigit(c) && i+1 < len(b) && isASCIIDigit(b[i+1]):
			out = append(out, byte((int(c-'0')*10+int(b[i+1]-'0'))+130))
			i++
		case c < 128:
			out = append(out, c+1)
		default:
			out = append(out, 235, c-127)
		}
	}
	return out
}

func isASCIIDigit(c byte) bool { return c >= '0' && c <= '9' }

// dataMatrixModules lays out the placed mapping matrix with the finder and
// clock patterns of every data region.
func dataMatrixModules(p *dmenc.DefaultPlacement, info *dmenc.SymbolInfo) [][]bool {
	w, h := info.MatrixWidth, info.MatrixHeight
	drCols, drRows := info.DataRegionSizeColumns, info.DataRegionSizeRows
	out := make([][]bool, h)
	for y := range out {
		out[y] = make([]bool, w)
	}
	for oy := 0; oy < h; oy += drRows + 2 {
		for ox := 0; ox < w; ox += drCols + 2 {
			for y := 0; y < drRows+2; y++ {
				out[oy+y][ox] = true
				out[oy+y][ox+drCols+1] = y%2 == 1
			}
			for x := 0; x < drCols+2; x++ {
				out[oy+drRows+1][ox+x] = true
				if x%2 == 0 {
					out[oy][ox+x] = true
				}
			}
			regionCol := ox / (drCols + 2)
			regionRow := oy / (drRows + 2)
			for y := 0; y < drRows; y++ {
				for x := 0; x < drCols; x++ {
					out[oy+1+y][ox+1+x] = p.GetBit(regionCol*drCols+x, regionRow*drRows+y)
				}
			}
		}
	}
	return out
}

func fromBitMatrix(bm *bitutil.BitMatrix, left, top, width, height int) [][]bool {
	out := make([][]bool, height)
	for y := range out {
		out[y] = make([]bool, width)
		for x := range out[y] {
			out[y][x] = bm.Get(left+x, top+y)
		}
	}
	return out
}

// String renders the matrix with '#' for dark modules, one line per row.
func (s *TwoD) String() string {
	var sb strings.Builder
	for _, row := range s.modules {
		for _, v := range row {
			if v {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
