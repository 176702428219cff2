// Package render runs a request through validation, color resolution, GS1
// preprocessing, symbol construction and export.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/barcoded/internal/colors"
	"github.com/MeKo-Tech/barcoded/internal/export"
	"github.com/MeKo-Tech/barcoded/internal/fonts"
	"github.com/MeKo-Tech/barcoded/internal/gs1"
	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/mempool"
	"github.com/MeKo-Tech/barcoded/internal/request"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

// DefaultCreator is written into document metadata.
const DefaultCreator = "barcoded"

const pointsToMM = 25.4 / 72

// Options configures a Renderer.
type Options struct {
	// Fonts resolves font names. Nil uses the bundled fonts only.
	Fonts   *fonts.Registry
	Creator string
	// DefaultPDFDPI is the PDF resolution when a request has no DPI.
	DefaultPDFDPI int
	// MaxPixels limits the raster size of PNG, BMP, JPEG and PDF output.
	// Zero disables the limit.
	MaxPixels int
	Logger    *slog.Logger
}

// Renderer turns requests into encoded documents. It holds only read-only
// state and is safe for concurrent use.
type Renderer struct {
	fonts         *fonts.Registry
	creator       string
	defaultPDFDPI int
	maxPixels     int
	log           *slog.Logger
}

// New returns a Renderer.
func New(opts Options) (*Renderer, error) {
	reg := opts.Fonts
	if reg == nil {
		var err error
		reg, err = fonts.NewRegistry(fonts.Config{DisableSystem: true, Logger: opts.Logger})
		if err != nil {
			return nil, fmt.Errorf("load fonts: %w", err)
		}
	}
	r := &Renderer{
		fonts:         reg,
		creator:       opts.Creator,
		defaultPDFDPI: opts.DefaultPDFDPI,
		maxPixels:     opts.MaxPixels,
		log:           opts.Logger,
	}
	if r.creator == "" {
		r.creator = DefaultCreator
	}
	if r.defaultPDFDPI <= 0 {
		r.defaultPDFDPI = export.DefaultPDFDPI
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r, nil
}

// Fonts returns the font registry.
func (r *Renderer) Fonts() *fonts.Registry { return r.fonts }

// Result is an encoded document. Call Release when the bytes are no longer
// needed.
type Result struct {
	ContentType string
	Filename    string
	TypeName    string
	Format      export.Format

	buf     *bytes.Buffer
	release func()
}

// Bytes returns the encoded document. The slice is invalid after Release.
func (res *Result) Bytes() []byte {
	if res.buf == nil {
		return nil
	}
	return res.buf.Bytes()
}

// Len returns the document size in bytes.
func (res *Result) Len() int {
	if res.buf == nil {
		return 0
	}
	return res.buf.Len()
}

// Release returns the buffer to the pool. It is safe to call more than once.
func (res *Result) Release() {
	if res.release != nil {
		res.release()
		res.release = nil
		res.buf = nil
	}
}

// Render1D renders a linear symbol. The request is normalized in place.
func (r *Renderer) Render1D(ctx context.Context, req *request.Linear) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := request.ValidateLinear(req); err != nil {
		return nil, structural(err)
	}
	fg, bg, err := resolveColors(&req.Common)
	if err != nil {
		return nil, err
	}

	content := *req.Content
	if *req.Type == symbol.EAN128 {
		// NewLinear parses and validates the AIs.
		content = gs1.Preprocess(content, gs1.FNC1)
	}
	sym, err := symbol.NewLinear(*req.Type, content, *req.AutoComplete, *req.AppendOptionalChecksum)
	if err != nil {
		return nil, semantic(err)
	}
	if err := sym.SetAddOn(*req.AddOn); err != nil {
		return nil, semantic(err)
	}
	sym.SetTextVisible(*req.TextVisible)
	sym.SetTextOnTop(*req.TextOnTop)
	sym.SetTextOffset(*req.TextOffset)
	sym.SetShowOptionalChecksum(*req.ShowOptionalChecksum)
	sym.SetRatio(*req.Ratio)
	sym.SetFont(r.fonts.Resolve(*req.FontName, *req.FontSize*pointsToMM), *req.FontSize == 0)

	return r.finish(ctx, sym, &req.Common, fg, bg)
}

// Render2D renders a two-dimensional symbol. The request is normalized in
// place. Build failures are reported with the generic invalid message; only
// GS1 syntax errors are surfaced.
func (r *Renderer) Render2D(ctx context.Context, req *request.TwoD) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := request.ValidateTwoD(req); err != nil {
		return nil, structural(err)
	}
	fg, bg, err := resolveColors(&req.Common)
	if err != nil {
		return nil, err
	}

	typ := *req.Type
	content := *req.Content
	opts := symbol.TwoDOptions{
		QuietZone:             *req.QuietZone,
		QRVersion:             *req.QRVersion,
		QRErrorCorrection:     *req.QRErrorCorrection,
		DMSize:                *req.DMSize,
		DMShape:               *req.DMShape,
		PDF417Cols:            *req.PDF417Cols,
		PDF417Rows:            *req.PDF417Rows,
		PDF417ErrorCorrection: *req.PDF417ErrorCorrection,
		AztecSize:             *req.AztecSize,
		AztecErrorCorrection:  *req.AztecErrorCorrection,
	}
	switch {
	case typ.IsGS1() || content == "":
		canonical, err := gs1.Validate(gs1.Preprocess(content, gs1.GroupSeparator), gs1.GroupSeparator)
		if err != nil {
			return nil, semantic(err)
		}
		content = canonical
	case req.Charset != nil:
		enc, err := symbol.LookupCharset(*req.Charset)
		if err != nil {
			r.log.DebugContext(ctx, "charset rejected", "type", typ.String(), "error", err)
			return nil, &SemanticError{Err: i18n.Invalid()}
		}
		opts.Charset = enc
	}

	sym, err := symbol.NewTwoD(typ, content, opts)
	if err != nil {
		r.log.DebugContext(ctx, "2D symbol build failed", "type", typ.String(), "error", err)
		return nil, &SemanticError{Err: i18n.Invalid()}
	}
	return r.finish(ctx, sym, &req.Common, fg, bg)
}

func resolveColors(c *request.Common) (fg, bg colors.Color, err error) {
	fg, err = colors.Resolve(c.Foreground, *c.ColorModel)
	if err != nil {
		return fg, bg, structural(fmt.Errorf("Foreground: %w", err)) //nolint:stylecheck // client-facing message
	}
	bg, err = colors.Resolve(c.Background, *c.ColorModel)
	if err != nil {
		return fg, bg, structural(fmt.Errorf("Background: %w", err)) //nolint:stylecheck // client-facing message
	}
	return fg, bg, nil
}

// finish draws sym inside the margins and encodes the document.
func (r *Renderer) finish(ctx context.Context, sym symbol.Symbol, c *request.Common,
	fg, bg colors.Color,
) (*Result, error) {
	format := *c.Format
	doc := export.NewDocument(*c.Width, *c.Height)
	doc.Title = sym.TypeName()
	doc.Creator = r.creator
	doc.Foreground, doc.Background = fg, bg
	doc.Opaque = *c.Opaque
	doc.Transform = *c.Transform

	dpi := *c.DPI
	geometry := symbol.Geometry{
		X:      *c.MarginLeft,
		Y:      *c.MarginTop,
		Width:  *c.Width - *c.MarginLeft - *c.MarginRight,
		Height: *c.Height - *c.MarginTop - *c.MarginBottom,
	}
	if format.Raster() {
		geometry.Dot = 25.4 / float64(dpi)
	}
	if err := r.checkPixels(doc, format, dpi); err != nil {
		return nil, err
	}

	sym.Draw(doc, geometry)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := mempool.GetBuffer(0)
	opts := export.WriteOptions{
		Format:     format,
		DPI:        dpi,
		PDFDPI:     r.defaultPDFDPI,
		InlineSVG:  *c.FormatInlineSVG,
		PreviewDPI: *c.FormatPreviewDpiEPS,
	}
	if err := export.Write(buf, doc, opts); err != nil {
		mempool.PutBuffer(buf)
		if errors.Is(err, ErrTooLarge) {
			return nil, structural(err)
		}
		r.log.ErrorContext(ctx, "export failed", "type", sym.TypeName(), "format", format.String(), "error", err)
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return &Result{
		ContentType: format.ContentType(),
		Filename:    export.Filename(sym.TypeName(), format),
		TypeName:    sym.TypeName(),
		Format:      format,
		buf:         buf,
		release:     func() { mempool.PutBuffer(buf) },
	}, nil
}

// ErrTooLarge is returned when the raster output would exceed MaxPixels or
// the export limit.
var ErrTooLarge = export.ErrTooLarge

func (r *Renderer) checkPixels(doc *export.Document, format export.Format, dpi int) error {
	if r.maxPixels <= 0 || !(format.Raster() || format == export.PDF) {
		return nil
	}
	if dpi <= 0 {
		dpi = r.defaultPDFDPI
	}
	w, h := export.PixelSize(doc, dpi)
	if export.ExceedsPixels(w, h, r.maxPixels) {
		return structural(fmt.Errorf("%w: %dx%d pixels exceed the limit of %d", ErrTooLarge, w, h, r.maxPixels))
	}
	return nil
}
