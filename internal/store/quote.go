package store

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Null is the SQL literal produced for empty or absent values.
const Null = "null"

// Quote returns raw as a single-quoted SQL string literal.
//
// The empty string becomes Null. Newlines and tabs are kept, single quotes
// are doubled, and every other character is kept only if printable. Input
// is NFC-normalized first and invalid UTF-8 is dropped.
func Quote(raw string) string {
	if raw == "" {
		return Null
	}

	raw = norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(raw) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			// invalid byte
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\'':
			b.WriteString("''")
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteNullable is Quote for values that may be absent.
func QuoteNullable(raw *string) string {
	if raw == nil {
		return Null
	}
	return Quote(*raw)
}
