package export

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/MeKo-Tech/barcoded/internal/mempool"
)

// writePDF rasterizes the page at dpi into a PNG, keeping transparency, and
// places it on a single page of the page size.
func writePDF(w io.Writer, d *Document, dpi int) error {
	img, release, err := rasterize(d, PDF, dpi)
	if err != nil {
		return err
	}
	defer release()

	pw, ph := d.PageSize()
	png := mempool.GetBuffer(4 * img.Bounds().Dx() * img.Bounds().Dy() / 8)
	defer mempool.PutBuffer(png)
	if err := imaging.Encode(png, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode pdf image: %w", err)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: points(pw), Height: points(ph)}
	imp.UserDim = true
	imp.Pos = types.Full
	imp.DPI = dpi

	conf := model.NewDefaultConfiguration()
	if err := api.ImportImages(nil, w, []io.Reader{png}, imp, conf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
