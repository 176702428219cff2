package symbol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearType_NamesRoundTrip(t *testing.T) {
	for _, lt := range LinearTypes() {
		t.Run(lt.String(), func(t *testing.T) {
			parsed, err := ParseLinearType(lt.String())
			require.NoError(t, err)
			assert.Equal(t, lt, parsed)
			assert.NotEmpty(t, lt.Info().TypeName)
		})
	}
	_, err := ParseLinearType("CODE93")
	assert.EqualError(t, err, `unknown 1D type "CODE93"`)
}

func TestLinearType_JSON(t *testing.T) {
	var v struct {
		Type LinearType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"UPCE"}`), &v))
	assert.Equal(t, UPCE, v.Type)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"UPCE"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"type":"upce"}`), &v))
	_, err = LinearType(99).MarshalText()
	assert.Error(t, err)
}

func TestLinearType_Capabilities(t *testing.T) {
	assert.True(t, Code39.Info().OptionalChecksum)
	assert.True(t, ITF.Info().OptionalChecksum)
	assert.False(t, Code128.Info().OptionalChecksum)
	assert.True(t, EAN13.Info().AddOn)
	assert.False(t, ITF14.Info().CustomText)
	assert.Equal(t, "Interleaved 2 of 5", ITF.Info().TypeName)
	assert.Equal(t, "GS1-128", EAN128.Info().TypeName)

	props := ISBN13.Properties()
	assert.Equal(t, "ISBN-13", props["typeName"])
	assert.Equal(t, true, props["addOn"])
	assert.Equal(t, false, props["ratio"])
}

func TestTwoDType_Table(t *testing.T) {
	tests := []struct {
		typ       TwoDType
		name      string
		typeName  string
		gs1       bool
		quietZone int
	}{
		{QRCode, "QRCODE", "QR Code", false, 4},
		{QRCodeGS1, "QRCODE_GS1", "GS1 QR Code", true, 4},
		{DataMatrix, "DATAMATRIX", "DataMatrix", false, 1},
		{DataMatrixGS1, "DATAMATRIX_GS1", "GS1 DataMatrix", true, 1},
		{PDF417, "PDF417", "PDF417", false, 2},
		{Aztec, "AZTEC", "Aztec", false, 0},
	}
	require.Len(t, TwoDTypes(), len(tests))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.typ.String())
			assert.Equal(t, tt.typeName, tt.typ.Info().TypeName)
			assert.Equal(t, tt.gs1, tt.typ.IsGS1())
			assert.Equal(t, tt.quietZone, tt.typ.Properties()["defaultQuietZone"])
			parsed, err := ParseTwoDType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, parsed)
		})
	}
}

func TestEnums_UnmarshalText(t *testing.T) {
	var l QRErrorCorrection
	require.NoError(t, l.UnmarshalText([]byte("H")))
	assert.Equal(t, QRLevelH, l)
	assert.Error(t, l.UnmarshalText([]byte("X")))

	var s DMShape
	require.NoError(t, s.UnmarshalText([]byte("RECTANGLE")))
	assert.Equal(t, DMShapeRectangle, s)
	assert.Error(t, s.UnmarshalText([]byte("ROUND")))
	assert.Equal(t, "AUTO", DMShapeAuto.String())
}
