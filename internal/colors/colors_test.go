package colors

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		channels []int
		model    Model
		want     Color
		wantErr  string
	}{
		{
			name:     "rgb black",
			channels: []int{0, 0, 0},
			model:    RGB,
			want:     Color{Model: RGB},
		},
		{
			name:     "rgb orange",
			channels: []int{255, 128, 0},
			model:    RGB,
			want:     Color{Model: RGB, R: 255, G: 128},
		},
		{
			name:     "cmyk black",
			channels: []int{0, 0, 0, 100},
			model:    CMYK,
			want:     Color{Model: CMYK, K: 100},
		},
		{
			name:     "rgb with four values",
			channels: []int{0, 0, 0, 0},
			model:    RGB,
			wantErr:  "RGB colors must have exactly 3 values [R,G,B]",
		},
		{
			name:     "cmyk with three values",
			channels: []int{0, 0, 0},
			model:    CMYK,
			wantErr:  "CMYK colors must have exactly 4 values [C,M,Y,K]",
		},
		{
			name:     "rgb out of range",
			channels: []int{0, 256, 0},
			model:    RGB,
			wantErr:  "Color value out of range: 256 (allowed 0..255)",
		},
		{
			name:     "cmyk out of range",
			channels: []int{0, 0, 101, 0},
			model:    CMYK,
			wantErr:  "Color value out of range: 101 (allowed 0..100)",
		},
		{
			name:     "negative channel",
			channels: []int{-1, 0, 0},
			model:    RGB,
			wantErr:  "Color value out of range: -1 (allowed 0..255)",
		},
		{
			name:    "nil list",
			model:   RGB,
			wantErr: "RGB colors must have exactly 3 values [R,G,B]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.channels, tt.model)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaults(t *testing.T) {
	fg, bg := Defaults(RGB)
	assert.Equal(t, []int{0, 0, 0}, fg)
	assert.Equal(t, []int{255, 255, 255}, bg)

	fg, bg = Defaults(CMYK)
	assert.Equal(t, []int{0, 0, 0, 100}, fg)
	assert.Equal(t, []int{0, 0, 0, 0}, bg)
}

func TestConversions(t *testing.T) {
	black, err := NewCMYK(0, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, black.NRGBA(255))

	cyan, err := NewCMYK(100, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0, G: 255, B: 255, A: 128}, cyan.NRGBA(128))
	assert.Equal(t, "#00ffff", cyan.Hex())

	red, err := NewRGB(255, 0, 0)
	require.NoError(t, err)
	c, m, y, k := red.CMYKFractions()
	assert.InDelta(t, 0.0, c, 1e-9)
	assert.InDelta(t, 1.0, m, 1e-9)
	assert.InDelta(t, 1.0, y, 1e-9)
	assert.InDelta(t, 0.0, k, 1e-9)

	rgbBlack := Color{Model: RGB}
	_, _, _, k = rgbBlack.CMYKFractions()
	assert.InDelta(t, 1.0, k, 1e-9)
}

func TestModelJSON(t *testing.T) {
	var payload struct {
		Model Model `json:"colorModel"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"colorModel":"cmyk"}`), &payload))
	assert.Equal(t, CMYK, payload.Model)

	err := json.Unmarshal([]byte(`{"colorModel":"HSV"}`), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown color model "HSV"`)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"colorModel":"CMYK"}`, string(out))
}
