package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase capitalizes each word of s ("winston-salem" -> "Winston-Salem").
// Reference city and state names are stored in this form.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// CapWords splits s on whitespace, uppercases the first rune of each word and
// lowercases the rest, then joins with single spaces. Unlike TitleCase it
// leaves "4th" alone.
func CapWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + strings.ToLower(f[size:])
	}
	return strings.Join(fields, " ")
}
