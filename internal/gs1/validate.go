package gs1

import (
	"strconv"
	"strings"

	"github.com/MeKo-Tech/barcoded/internal/i18n"
)

// Element is one AI with its data.
type Element struct {
	AI   string
	Data string
}

// cset82 holds the characters allowed in alphanumeric GS1 fields besides
// letters and digits.
const cset82 = "!\"%&'()*+,-./:;<=>?_"

// Validate parses GS1 content whose variable-length fields are delimited by
// sep and returns it in canonical form: AIs without parentheses and sep only
// after variable-length elements that are not last.
func Validate(content string, sep rune) (string, error) {
	elements, err := Parse(content, sep)
	if err != nil {
		return "", err
	}
	return Canonical(elements, sep), nil
}

// Parse splits content into validated elements. AIs may be written as
// "(01)..." or without parentheses.
func Parse(content string, sep rune) ([]Element, error) {
	if content == "" {
		return nil, i18n.New("No data to encode", "Keine Daten zum Kodieren")
	}
	runes := []rune(content)
	var elements []Element
	for pos := 0; pos < len(runes); {
		if runes[pos] == sep {
			pos++
			continue
		}
		var (
			d         Definition
			bracketed bool
		)
		if runes[pos] == '(' {
			code, next, ok := bracketedAI(runes, pos)
			if !ok {
				return nil, i18n.New("Malformed Application Identifier", "Fehlerhafter Datenbezeichner")
			}
			var known bool
			if d, known = Lookup(code); !known {
				return nil, unknownAI(code)
			}
			pos = next
			bracketed = true
		} else {
			prefix := digitPrefix(runes, pos)
			if len(prefix) < 2 {
				return nil, i18n.New("Malformed Application Identifier", "Fehlerhafter Datenbezeichner")
			}
			var known bool
			if d, known = lookupPrefix(prefix); !known {
				return nil, unknownAI(prefix)
			}
			pos += len(d.Code)
		}

		end := pos
		limit := len(runes)
		if !bracketed && d.Predefined() && pos+d.MaxLength() < limit {
			limit = pos + d.MaxLength()
		}
		for end < limit && runes[end] != sep {
			if bracketed && runes[end] == '(' {
				if _, _, ok := bracketedAI(runes, end); ok {
					break
				}
			}
			end++
		}
		data := string(runes[pos:end])
		if err := checkData(d, data); err != nil {
			return nil, err
		}
		elements = append(elements, Element{AI: d.Code, Data: data})
		pos = end
	}
	if len(elements) == 0 {
		return nil, i18n.New("No data to encode", "Keine Daten zum Kodieren")
	}
	return elements, nil
}

// Canonical joins elements without parentheses.
func Canonical(elements []Element, sep rune) string {
	var sb strings.Builder
	for i, e := range elements {
		sb.WriteString(e.AI)
		sb.WriteString(e.Data)
		d, _ := Lookup(e.AI)
		if i < len(elements)-1 && !d.Predefined() {
			sb.WriteRune(sep)
		}
	}
	return sb.String()
}

// HumanReadable renders elements as "(AI)data(AI)data".
func HumanReadable(elements []Element) string {
	var sb strings.Builder
	for _, e := range elements {
		sb.WriteByte('(')
		sb.WriteString(e.AI)
		sb.WriteByte(')')
		sb.WriteString(e.Data)
	}
	return sb.String()
}

// bracketedAI reads "(dd)" to "(dddd)" starting at pos.
func bracketedAI(runes []rune, pos int) (code string, next int, ok bool) {
	i := pos + 1
	for i < len(runes) && i-pos-1 < 4 && isDigit(runes[i]) {
		i++
	}
	digits := i - pos - 1
	if digits < 2 || i >= len(runes) || runes[i] != ')' {
		return "", pos, false
	}
	return string(runes[pos+1 : i]), i + 1, true
}

func digitPrefix(runes []rune, pos int) string {
	end := pos
	for end < len(runes) && end-pos < 4 && isDigit(runes[end]) {
		end++
	}
	return string(runes[pos:end])
}

func checkData(d Definition, data string) error {
	if data == "" {
		return i18n.Errorf("Missing data for Application Identifier (%s)",
			"Fehlende Daten für Datenbezeichner (%s)", d.Code)
	}
	if len(data) < d.MinLength() || len(data) > d.MaxLength() {
		return i18n.Errorf("Invalid data length for Application Identifier (%s)",
			"Ungültige Datenlänge für Datenbezeichner (%s)", d.Code)
	}
	rest := data
	for i, p := range d.parts {
		take := p.max
		if i == len(d.parts)-1 || take > len(rest) {
			take = len(rest)
		}
		field := rest[:take]
		rest = rest[take:]
		if len(field) < p.min {
			return i18n.Errorf("Invalid data length for Application Identifier (%s)",
				"Ungültige Datenlänge für Datenbezeichner (%s)", d.Code)
		}
		if err := checkField(d.Code, p, field); err != nil {
			return err
		}
	}
	return nil
}

func checkField(code string, p part, field string) error {
	for _, r := range field {
		if p.numeric && !isDigit(r) {
			return i18n.Errorf("Application Identifier (%s) requires numeric data",
				"Datenbezeichner (%s) erfordert numerische Daten", code)
		}
		if !p.numeric && !isCSet82(r) {
			return i18n.Errorf("Invalid character '%c' in data for Application Identifier (%s)",
				"Ungültiges Zeichen '%c' in Daten für Datenbezeichner (%s)", r, code)
		}
	}
	if p.check && !validCheckDigit(field) {
		return i18n.Errorf("Invalid check digit for Application Identifier (%s)",
			"Ungültige Prüfziffer für Datenbezeichner (%s)", code)
	}
	if p.date && !validDate(field) {
		return i18n.Errorf("Invalid date for Application Identifier (%s)",
			"Ungültiges Datum für Datenbezeichner (%s)", code)
	}
	return nil
}

func unknownAI(code string) error {
	return i18n.Errorf("Unknown Application Identifier (%s)",
		"Unbekannter Datenbezeichner (%s)", code)
}

// CheckDigit computes the GS1 mod-10 check digit of a digit string.
func CheckDigit(digits string) int {
	sum := 0
	weight := 3
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight = 4 - weight
	}
	return (10 - sum%10) % 10
}

func validCheckDigit(field string) bool {
	last := len(field) - 1
	return CheckDigit(field[:last]) == int(field[last]-'0')
}

// validDate checks YYMMDD where DD may be 00 for "end of month".
func validDate(field string) bool {
	month, _ := strconv.Atoi(field[2:4])
	day, _ := strconv.Atoi(field[4:6])
	return month >= 1 && month <= 12 && day <= 31
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isCSet82(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || isDigit(r) || strings.ContainsRune(cset82, r)
}
