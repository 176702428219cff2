package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/barcoded/internal/mempool"
)

// MaxRasterPixels bounds every raster page, whatever budget the caller
// applies.
const MaxRasterPixels = 1 << 28

// ErrTooLarge is returned when a raster page exceeds a pixel limit.
var ErrTooLarge = errors.New("image too large")

// ExceedsPixels reports whether a w x h raster has more than limit pixels.
// The product is never computed, so huge sizes cannot wrap around.
func ExceedsPixels(w, h, limit int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	return w > limit || h > limit/w
}

// PixelSize returns the raster size of the written page at dpi.
func PixelSize(d *Document, dpi int) (w, h int) {
	pw, ph := d.PageSize()
	return max(pixels(pw, dpi), 1), max(pixels(ph, dpi), 1)
}

// rasterize draws d at dpi and applies the transform. The returned release
// function gives the pixel buffer back to the pool once the image is encoded.
func rasterize(d *Document, f Format, dpi int) (image.Image, func(), error) {
	w, h := max(pixels(d.Width, dpi), 1), max(pixels(d.Height, dpi), 1)
	if ExceedsPixels(w, h, MaxRasterPixels) {
		return nil, nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, w, h)
	}
	pix := mempool.GetBytes(4 * w * h)
	img := &image.NRGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	release := func() { mempool.PutBytes(pix) }

	if d.paintsBackground(f) {
		draw.Draw(img, img.Bounds(), image.NewUniform(d.Background.NRGBA(255)), image.Point{}, draw.Src)
	}
	fg := image.NewUniform(d.Foreground.NRGBA(255))
	for _, r := range d.rects {
		x0, y0 := pixels(r.x, dpi), pixels(r.y, dpi)
		x1, y1 := max(pixels(r.x+r.w, dpi), x0+1), max(pixels(r.y+r.h, dpi), y0+1)
		draw.Draw(img, image.Rect(x0, y0, x1, y1), fg, image.Point{}, draw.Over)
	}
	for _, t := range d.texts {
		if err := drawText(img, t, fg, dpi); err != nil {
			release()
			return nil, nil, err
		}
	}

	var out image.Image = img
	switch d.Transform {
	case Rotate90:
		out = imaging.Rotate270(img)
	case Rotate180:
		out = imaging.Rotate180(img)
	case Rotate270:
		out = imaging.Rotate90(img)
	case FlipHorizontal:
		out = imaging.FlipH(img)
	case FlipVertical:
		out = imaging.FlipV(img)
	}
	if d.Transform != Rotate0 {
		// imaging returned a copy; the pooled buffer is free again.
		release()
		release = func() {}
	}
	return out, release, nil
}

func drawText(dst draw.Image, t textRun, src image.Image, dpi int) error {
	sf := t.face.Font()
	if sf == nil {
		return nil
	}
	face, err := opentype.NewFace(sf, &opentype.FaceOptions{
		Size:    points(t.face.Size),
		DPI:     float64(dpi),
		Hinting: font.HintingNone,
	})
	if err != nil {
		return fmt.Errorf("create face %q: %w", t.face.Family, err)
	}
	defer func() { _ = face.Close() }()

	scale := float64(dpi) / mmPerInch * 64
	dr := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(t.x * scale)),
			Y: fixed.Int26_6(math.Round(t.baseline * scale)),
		},
	}
	dr.DrawString(t.text)
	return nil
}

func writeRaster(w io.Writer, d *Document, f Format, dpi int) error {
	img, release, err := rasterize(d, f, dpi)
	if err != nil {
		return err
	}
	defer release()

	var encErr error
	switch f {
	case PNG:
		encErr = imaging.Encode(w, img, imaging.PNG)
	case BMP:
		encErr = imaging.Encode(w, img, imaging.BMP)
	case JPG:
		encErr = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	default:
		return fmt.Errorf("export: %s is not a raster format", f)
	}
	if encErr != nil {
		return fmt.Errorf("encode %s: %w", f, encErr)
	}
	return nil
}

// luminance returns the perceived brightness of c in 0..255.
func luminance(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y //nolint:forcetypeassert // GrayModel returns color.Gray
}
