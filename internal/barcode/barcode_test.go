package barcode

import (
	"context"
	"image"
	"testing"

	zxinggo "github.com/ericlevine/zxinggo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barcoded/internal/export"
	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/request"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

func ptr[T any](v T) *T { return &v }

func renderLinear(t *testing.T, typ symbol.LinearType, content string, format export.Format) []byte {
	t.Helper()
	r, err := render.New(render.Options{})
	require.NoError(t, err)
	res, err := r.Render1D(context.Background(), &request.Linear{
		Common: request.Common{
			Content:     ptr(content),
			Width:       ptr(60.0),
			Height:      ptr(30.0),
			MarginLeft:  ptr(5.0),
			MarginRight: ptr(5.0),
			Format:      ptr(format),
			DPI:         ptr(300),
		},
		Type: ptr(typ),
	})
	require.NoError(t, err)
	defer res.Release()
	return append([]byte(nil), res.Bytes()...)
}

func renderTwoD(t *testing.T, typ symbol.TwoDType, content string) []byte {
	t.Helper()
	return renderTwoDAs(t, typ, content, export.PNG, 300)
}

func renderTwoDAs(t *testing.T, typ symbol.TwoDType, content string, format export.Format, dpi int) []byte {
	t.Helper()
	r, err := render.New(render.Options{})
	require.NoError(t, err)
	res, err := r.Render2D(context.Background(), &request.TwoD{
		Common: request.Common{
			Content: ptr(content),
			Width:   ptr(30.0),
			Height:  ptr(30.0),
			Format:  ptr(format),
			DPI:     ptr(dpi),
		},
		Type: ptr(typ),
	})
	require.NoError(t, err)
	defer res.Release()
	return append([]byte(nil), res.Bytes()...)
}

func TestVerify_Linear(t *testing.T) {
	tests := []struct {
		name    string
		typ     symbol.LinearType
		content string
		want    string
	}{
		{"ean13", symbol.EAN13, "4006381333931", "4006381333931"},
		{"code128", symbol.Code128, "HELLO-123", "HELLO-123"},
		{"code39", symbol.Code39, "ABC123", "ABC123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := LinearFormat(tt.typ)
			require.True(t, ok)
			res, err := Verify(context.Background(), renderLinear(t, tt.typ, tt.content, export.PNG), format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, format, res.Format)
		})
	}
}

func TestVerify_TwoD(t *testing.T) {
	tests := []struct {
		name    string
		typ     symbol.TwoDType
		content string
	}{
		{"qr", symbol.QRCode, "https://example.com/item/42"},
		{"datamatrix", symbol.DataMatrix, "barcoded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := TwoDFormat(tt.typ)
			require.True(t, ok)
			res, err := Verify(context.Background(), renderTwoD(t, tt.typ, tt.content), format)
			require.NoError(t, err)
			assert.Equal(t, tt.content, res.Text)
			assert.False(t, res.BBox.Empty())
		})
	}
}

func TestVerify_PDF(t *testing.T) {
	data := renderTwoDAs(t, symbol.QRCode, "pdf round trip", export.PDF, 300)
	res, err := Verify(context.Background(), data, zxinggo.FormatQRCode)
	require.NoError(t, err)
	assert.Equal(t, "pdf round trip", res.Text)
}

func TestVerify_SmallImageIsUpscaled(t *testing.T) {
	data := renderTwoDAs(t, symbol.QRCode, "tiny", export.PNG, 72)
	res, err := Verify(context.Background(), data, zxinggo.FormatQRCode)
	require.NoError(t, err)
	assert.Equal(t, "tiny", res.Text)
	for _, p := range res.Points {
		assert.Less(t, p.X, 100)
		assert.Less(t, p.Y, 100)
	}
}

func TestUpscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 100))

	up, scale, ok := upscale(img, 300)
	require.True(t, ok)
	assert.Equal(t, 6, scale)
	assert.Equal(t, image.Rect(0, 0, 300, 600), up.Bounds())

	_, _, ok = upscale(img, 40)
	assert.False(t, ok, "already large enough")
	_, _, ok = upscale(img, 0)
	assert.False(t, ok, "disabled")

	wide := image.NewGray(image.Rect(0, 0, 2000, 10))
	_, _, ok = upscale(wide, 300)
	assert.False(t, ok, "capped below a factor of two")
}

func TestVerify_VectorFormat(t *testing.T) {
	_, err := Verify(context.Background(), renderLinear(t, symbol.EAN13, "4006381333931", export.SVG), zxinggo.FormatEAN13)
	assert.ErrorIs(t, err, ErrNotRaster)
}

func TestDecode_BlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	_, err := NewBackend().Decode(context.Background(), img, Options{})
	assert.ErrorIs(t, err, zxinggo.ErrNotFound)
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBackend().Decode(ctx, image.NewNRGBA(image.Rect(0, 0, 8, 8)), Options{ROI: image.Rect(0, 0, 4, 4)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatMappingCoversAllTypes(t *testing.T) {
	for _, typ := range symbol.LinearTypes() {
		_, ok := LinearFormat(typ)
		assert.True(t, ok, typ.String())
	}
	for _, typ := range symbol.TwoDTypes() {
		_, ok := TwoDFormat(typ)
		assert.True(t, ok, typ.String())
	}
}

func TestJobFormat(t *testing.T) {
	tests := []struct {
		name    string
		job     render.Job
		want    zxinggo.Format
		wantErr bool
	}{
		{"gs1-128", render.Job{Kind: render.Kind1D, Request: []byte(`{"type":"EAN128"}`)}, zxinggo.FormatCode128, false},
		{"isbn", render.Job{Kind: render.Kind1D, Request: []byte(`{"type":"ISBN13"}`)}, zxinggo.FormatEAN13, false},
		{"gs1 datamatrix", render.Job{Kind: render.Kind2D, Request: []byte(`{"type":"DATAMATRIX_GS1"}`)}, zxinggo.FormatDataMatrix, false},
		{"unknown type", render.Job{Kind: render.Kind2D, Request: []byte(`{"type":"MAXICODE"}`)}, 0, true},
		{"unknown kind", render.Job{Kind: "3d", Request: []byte(`{"type":"QRCODE"}`)}, 0, true},
		{"bad json", render.Job{Kind: render.Kind1D, Request: []byte(`{`)}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JobFormat(tt.job)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRectFromPoints(t *testing.T) {
	assert.True(t, rectFromPoints(nil).Empty())
	r := rectFromPoints([]Point{{X: 4, Y: 9}, {X: 1, Y: 2}, {X: 7, Y: 3}})
	assert.Equal(t, image.Rect(1, 2, 8, 10), r)
}
