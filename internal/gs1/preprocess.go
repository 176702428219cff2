// Package gs1 prepares and validates GS1 element strings: content made of
// Application Identifiers (AIs) followed by their data fields.
package gs1

import (
	"regexp"
	"strings"

	"github.com/ericlevine/zxinggo/oned"
)

const (
	// FNC1 is the Code 128 FNC1 escape understood by the linear encoder.
	FNC1 rune = oned.Code128EscapeFNC1
	// GroupSeparator is the ASCII GS control character used by 2D symbols.
	GroupSeparator rune = 0x1D
)

// bareAI matches a line that holds only an AI marker such as "(10)".
var bareAI = regexp.MustCompile(`^\(\d{2,4}\)$`)

// Preprocess folds multi-line GS1 content into one element string. Lines are
// trimmed, bare AI markers and blank lines are dropped, and sep is appended
// after every kept line that is not the last input line and does not already
// end with sep. Trailing empty lines do not count as input lines.
func Preprocess(content string, sep rune) string {
	lines := strings.Split(content, "\n")
	for len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	separator := string(sep)
	var sb strings.Builder
	sb.Grow(len(content) + len(lines))
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || bareAI.MatchString(s) {
			continue
		}
		sb.WriteString(s)
		if i != len(lines)-1 && !strings.HasSuffix(s, separator) {
			sb.WriteString(separator)
		}
	}
	return sb.String()
}
