// Package i18n selects the response language from an Accept-Language header
// and carries messages that exist in English and German.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported response language.
type Language int

const (
	English Language = iota
	German
)

func (l Language) String() string {
	if l == German {
		return "de"
	}
	return "en"
}

// Tag returns the BCP 47 tag of the language.
func (l Language) Tag() language.Tag {
	if l == German {
		return language.German
	}
	return language.English
}

// FromAcceptLanguage picks German when the highest weighted language of the
// header has the primary subtag "de" and English otherwise. Tags are ordered
// by q-value, so "en;q=0.5, de" selects German. An empty header means
// English.
func FromAcceptLanguage(header string) Language {
	header = strings.TrimSpace(header)
	if header == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		// Fall back to a plain prefix match for headers x/text refuses.
		if strings.HasPrefix(strings.ToLower(header), "de") {
			return German
		}
		return English
	}
	base, _ := tags[0].Base()
	if base.String() == "de" {
		return German
	}
	return English
}

// Error is an error with an English and a German message.
// Error() returns the English text.
type Error struct {
	EN string
	DE string
}

// New returns a bilingual error.
func New(en, de string) *Error {
	return &Error{EN: en, DE: de}
}

// Errorf formats both messages with the same arguments.
func Errorf(enFormat, deFormat string, args ...any) *Error {
	return &Error{EN: fmt.Sprintf(enFormat, args...), DE: fmt.Sprintf(deFormat, args...)}
}

func (e *Error) Error() string { return e.EN }

// Message returns the text for the given language.
func (e *Error) Message(lang Language) string {
	if lang == German && e.DE != "" {
		return e.DE
	}
	return e.EN
}

// Invalid is the generic message used for 2D symbols that cannot be built.
func Invalid() *Error {
	return New("invalid", "ungültig")
}
