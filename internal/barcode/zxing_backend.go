package barcode

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/ericlevine/zxinggo/binarizer"

	// Register the format readers.
	_ "github.com/ericlevine/zxinggo/aztec"
	_ "github.com/ericlevine/zxinggo/datamatrix"
	_ "github.com/ericlevine/zxinggo/oned"
	_ "github.com/ericlevine/zxinggo/pdf417"
	_ "github.com/ericlevine/zxinggo/qrcode"
)

// allFormats lists every format the renderer produces.
var allFormats = []zxinggo.Format{
	zxinggo.FormatQRCode,
	zxinggo.FormatDataMatrix,
	zxinggo.FormatAztec,
	zxinggo.FormatPDF417,
	zxinggo.FormatCode128,
	zxinggo.FormatCode39,
	zxinggo.FormatCodabar,
	zxinggo.FormatITF,
	zxinggo.FormatEAN13,
	zxinggo.FormatEAN8,
	zxinggo.FormatUPCA,
	zxinggo.FormatUPCE,
}

type zxingBackend struct{}

// Decode tries each requested format on a global histogram binarization
// first and a hybrid one second. Small images get a second pass after
// upscaling. Results are de-duplicated by format and text.
func (zxingBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if !opts.ROI.Empty() {
		if roi, ok := subImage(img, opts.ROI); ok {
			img = roi
		}
	}
	out, err := decodeImage(ctx, img, opts)
	if err != nil || len(out) > 0 {
		return out, err
	}
	if up, scale, ok := upscale(img, opts.MinSize); ok {
		if out, err = decodeImage(ctx, up, opts); err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = out[i].scaled(scale)
		}
	}
	if len(out) == 0 {
		return nil, zxinggo.ErrNotFound
	}
	return out, nil
}

// maxUpscaleDim caps the longer side of an upscaled image.
const maxUpscaleDim = 3000

// upscale enlarges img by a whole factor so that its shorter side reaches
// minSize. Nearest neighbor keeps module edges sharp.
func upscale(img image.Image, minSize int) (image.Image, int, bool) {
	b := img.Bounds()
	short, long := min(b.Dx(), b.Dy()), max(b.Dx(), b.Dy())
	if minSize <= 0 || short == 0 || short >= minSize {
		return nil, 0, false
	}
	scale := (minSize + short - 1) / short
	if long*scale > maxUpscaleDim {
		scale = maxUpscaleDim / long
	}
	if scale < 2 {
		return nil, 0, false
	}
	return imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor), scale, true
}

// scaled maps result coordinates from an upscaled image back.
func (r Result) scaled(scale int) Result {
	for i := range r.Points {
		r.Points[i].X /= scale
		r.Points[i].Y /= scale
	}
	r.BBox = rectFromPoints(r.Points)
	return r
}

// decodeImage returns all symbols found in img. Finding none is not an error.
func decodeImage(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = allFormats
	}

	source := zxinggo.NewImageLuminanceSource(img)
	bitmaps := []*zxinggo.BinaryBitmap{
		zxinggo.NewBinaryBitmap(binarizer.NewGlobalHistogram(source)),
		zxinggo.NewBinaryBitmap(binarizer.NewHybrid(source)),
	}

	var out []Result
	seen := map[string]bool{}
	for _, bitmap := range bitmaps {
		for _, format := range formats {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := tryDecode(bitmap, &zxinggo.DecodeOptions{
				TryHarder:       opts.TryHarder,
				PureBarcode:     opts.PureBarcode,
				PossibleFormats: []zxinggo.Format{format},
			})
			if err != nil {
				continue
			}
			key := r.Format.String() + ":" + r.Text
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, toResult(r))
		}
	}
	return out, nil
}

// tryDecode converts decoder panics on malformed input into errors.
func tryDecode(bitmap *zxinggo.BinaryBitmap, opts *zxinggo.DecodeOptions) (result *zxinggo.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return zxinggo.Decode(bitmap, opts)
}

func toResult(r *zxinggo.Result) Result {
	var points []Point
	for _, p := range r.Points {
		points = append(points, Point{X: int(p.X), Y: int(p.Y)})
	}
	return Result{Format: r.Format, Text: r.Text, Points: points, BBox: rectFromPoints(points)}
}

func rectFromPoints(pts []Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func subImage(img image.Image, r image.Rectangle) (image.Image, bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, false
	}
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r), true
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, true
}
