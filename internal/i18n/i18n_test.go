package i18n

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAcceptLanguage(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Language
	}{
		{"empty", "", English},
		{"english", "en", English},
		{"german", "de", German},
		{"german region", "de-DE", German},
		{"german list", "de-CH,de;q=0.9,en;q=0.8", German},
		{"english first", "en-US,de;q=0.5", English},
		{"german weighted higher", "en;q=0.5, de", German},
		{"english weighted higher", "de;q=0.1, en", English},
		{"french", "fr", English},
		{"garbage with de prefix", "de_DE@@", German},
		{"wildcard", "*", English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAcceptLanguage(tt.header))
		})
	}
}

func TestLanguageString(t *testing.T) {
	assert.Equal(t, "en", English.String())
	assert.Equal(t, "de", German.String())
	assert.Equal(t, "de", German.Tag().String())
}

func TestErrorMessage(t *testing.T) {
	err := Errorf("Invalid length: %d", "Ungültige Länge: %d", 7)
	assert.Equal(t, "Invalid length: 7", err.Error())
	assert.Equal(t, "Invalid length: 7", err.Message(English))
	assert.Equal(t, "Ungültige Länge: 7", err.Message(German))

	onlyEN := &Error{EN: "only english"}
	assert.Equal(t, "only english", onlyEN.Message(German))
}

func TestErrorUnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("build: %w", Invalid())

	var target *Error
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "ungültig", target.Message(German))
	assert.False(t, errors.Is(wrapped, Invalid()), "each Invalid() is a fresh value")
}
