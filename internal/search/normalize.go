package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowers, decomposes and strips diacritics, folds hyphens and
// apostrophes to spaces, and collapses whitespace. Applied identically to
// queries and candidate comparison fields so matching is accent-insensitive.
func Normalize(s string) string {
	s = strings.ToLower(s)

	// Transformer chains carry state, so build one per call
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripper, s); err == nil {
		s = stripped
	}

	// Stroked and ligature letters do not decompose under NFD
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '-', '\'', '’', '`':
			b.WriteRune(' ')
		case 'ø':
			b.WriteRune('o')
		case 'đ':
			b.WriteRune('d')
		case 'ł':
			b.WriteRune('l')
		case 'æ':
			b.WriteString("ae")
		case 'œ':
			b.WriteString("oe")
		case 'ß':
			b.WriteString("ss")
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
