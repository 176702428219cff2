package gs1

import (
	"testing"

	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	const gs = GroupSeparator
	tests := []struct {
		name    string
		content string
		want    string
		wantEN  string
		wantDE  string
	}{
		{
			name:    "bracketed fixed then variable",
			content: "(01)09501101530003(10)LOT5",
			want:    "0109501101530003" + "10LOT5",
		},
		{
			name:    "separator after variable field",
			content: "(10)LOT5\x1d(21)SER1",
			want:    "10LOT5\x1d21SER1",
		},
		{
			name:    "raw form",
			content: "0109501101530003" + "17251231" + "10ABC",
			want:    "0109501101530003" + "17251231" + "10ABC",
		},
		{
			name:    "separator dropped after fixed field",
			content: "(01)09501101530003\x1d(10)X",
			want:    "0109501101530003" + "10X",
		},
		{
			name:    "measure with decimal",
			content: "(3103)001250",
			want:    "3103001250",
		},
		{
			name:    "parenthesis inside data",
			content: "(10)A(B)",
			want:    "10A(B)",
		},
		{
			name:    "empty",
			content: "",
			wantEN:  "No data to encode",
			wantDE:  "Keine Daten zum Kodieren",
		},
		{
			name:    "only separators",
			content: "\x1d\x1d",
			wantEN:  "No data to encode",
			wantDE:  "Keine Daten zum Kodieren",
		},
		{
			name:    "unknown ai",
			content: "(99999)X",
			wantEN:  "Malformed Application Identifier",
			wantDE:  "Fehlerhafter Datenbezeichner",
		},
		{
			name:    "unknown bracketed ai",
			content: "(05)123",
			wantEN:  "Unknown Application Identifier (05)",
			wantDE:  "Unbekannter Datenbezeichner (05)",
		},
		{
			name:    "bad check digit",
			content: "(01)09501101530004",
			wantEN:  "Invalid check digit for Application Identifier (01)",
			wantDE:  "Ungültige Prüfziffer für Datenbezeichner (01)",
		},
		{
			name:    "too short",
			content: "(01)123",
			wantEN:  "Invalid data length for Application Identifier (01)",
			wantDE:  "Ungültige Datenlänge für Datenbezeichner (01)",
		},
		{
			name:    "not numeric",
			content: "(01)0950110153000A",
			wantEN:  "Application Identifier (01) requires numeric data",
			wantDE:  "Datenbezeichner (01) erfordert numerische Daten",
		},
		{
			name:    "bad character",
			content: "(10)LOT#5",
			wantEN:  "Invalid character '#' in data for Application Identifier (10)",
			wantDE:  "Ungültiges Zeichen '#' in Daten für Datenbezeichner (10)",
		},
		{
			name:    "bad date",
			content: "(17)251301",
			wantEN:  "Invalid date for Application Identifier (17)",
			wantDE:  "Ungültiges Datum für Datenbezeichner (17)",
		},
		{
			name:    "missing data",
			content: "(10)\x1d(21)X",
			wantEN:  "Missing data for Application Identifier (10)",
			wantDE:  "Fehlende Daten für Datenbezeichner (10)",
		},
		{
			name:    "plain text",
			content: "hello",
			wantEN:  "Malformed Application Identifier",
			wantDE:  "Fehlerhafter Datenbezeichner",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.content, gs)
			if tt.wantEN != "" {
				require.Error(t, err)
				var ie *i18n.Error
				require.ErrorAs(t, err, &ie)
				assert.Equal(t, tt.wantEN, ie.Message(i18n.English))
				assert.Equal(t, tt.wantDE, ie.Message(i18n.German))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAndHumanReadable(t *testing.T) {
	elements, err := Parse("(01)09501101530003ñ(10)LOT5ñ(21)S1", FNC1)
	require.NoError(t, err)
	assert.Equal(t, []Element{
		{AI: "01", Data: "09501101530003"},
		{AI: "10", Data: "LOT5"},
		{AI: "21", Data: "S1"},
	}, elements)
	assert.Equal(t, "(01)09501101530003(10)LOT5(21)S1", HumanReadable(elements))
	assert.Equal(t, "0109501101530003"+"10LOT5ñ21S1", Canonical(elements, FNC1))
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, 3, CheckDigit("0950110153000"))
	assert.Equal(t, 1, CheckDigit("400638133393"))
	assert.Equal(t, 0, CheckDigit(""))
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("01")
	require.True(t, ok)
	assert.True(t, d.Predefined())
	assert.Equal(t, 14, d.MaxLength())

	d, ok = Lookup("10")
	require.True(t, ok)
	assert.False(t, d.Predefined())

	_, ok = Lookup("3106")
	assert.False(t, ok)
	_, ok = Lookup("3105")
	assert.True(t, ok)
}
