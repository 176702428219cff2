package barcode

import (
	"encoding/json"
	"fmt"

	zxinggo "github.com/ericlevine/zxinggo"

	"github.com/MeKo-Tech/barcoded/internal/render"
	"github.com/MeKo-Tech/barcoded/internal/symbol"
)

// JobFormat returns the decoder format for the symbol type named in a job.
func JobFormat(job render.Job) (zxinggo.Format, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(job.Request, &head); err != nil {
		return 0, fmt.Errorf("read type: %w", err)
	}
	switch job.Kind {
	case render.Kind1D:
		t, err := symbol.ParseLinearType(head.Type)
		if err != nil {
			return 0, err
		}
		f, _ := LinearFormat(t)
		return f, nil
	case render.Kind2D:
		t, err := symbol.ParseTwoDType(head.Type)
		if err != nil {
			return 0, err
		}
		f, _ := TwoDFormat(t)
		return f, nil
	}
	return 0, fmt.Errorf("unknown kind %q", job.Kind)
}

// LinearFormat returns the decoder format that reads t.
func LinearFormat(t symbol.LinearType) (zxinggo.Format, bool) {
	switch t {
	case symbol.Code128, symbol.EAN128:
		return zxinggo.FormatCode128, true
	case symbol.Code39:
		return zxinggo.FormatCode39, true
	case symbol.Codabar:
		return zxinggo.FormatCodabar, true
	case symbol.ITF, symbol.ITF14:
		return zxinggo.FormatITF, true
	case symbol.EAN13, symbol.ISBN13:
		return zxinggo.FormatEAN13, true
	case symbol.EAN8:
		return zxinggo.FormatEAN8, true
	case symbol.UPCA:
		return zxinggo.FormatUPCA, true
	case symbol.UPCE:
		return zxinggo.FormatUPCE, true
	}
	return 0, false
}

// TwoDFormat returns the decoder format that reads t.
func TwoDFormat(t symbol.TwoDType) (zxinggo.Format, bool) {
	switch t {
	case symbol.QRCode, symbol.QRCodeGS1:
		return zxinggo.FormatQRCode, true
	case symbol.DataMatrix, symbol.DataMatrixGS1:
		return zxinggo.FormatDataMatrix, true
	case symbol.PDF417:
		return zxinggo.FormatPDF417, true
	case symbol.Aztec:
		return zxinggo.FormatAztec, true
	}
	return 0, false
}
