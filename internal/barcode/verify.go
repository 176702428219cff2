package barcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	// Decoders for the raster formats the renderer writes.
	_ "image/jpeg"
	_ "image/png"

	zxinggo "github.com/ericlevine/zxinggo"
	_ "golang.org/x/image/bmp"
)

// ErrNotRaster is returned when verification is requested for vector output.
var ErrNotRaster = errors.New("only raster output (PNG, BMP, JPG or PDF) can be verified")

// Verify decodes an encoded document and looks for a symbol of the given
// format. PDF documents are searched through their embedded images. It
// returns the first matching result.
func Verify(ctx context.Context, data []byte, format zxinggo.Format) (Result, error) {
	var images []image.Image
	if isPDF(data) {
		imgs, err := ExtractPDFImages(data)
		if err != nil {
			return Result{}, err
		}
		images = imgs
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return Result{}, ErrNotRaster
			}
			return Result{}, fmt.Errorf("decode image: %w", err)
		}
		images = []image.Image{img}
	}

	opts := Options{
		Formats:   []zxinggo.Format{format},
		TryHarder: true,
		MinSize:   DefaultMinSize,
	}
	backend := NewBackend()
	lastErr := error(zxinggo.ErrNotFound)
	for _, img := range images {
		results, err := backend.Decode(ctx, img, opts)
		if err == nil {
			return results[0], nil
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("no %s symbol found: %w", format, lastErr)
}
