// Package ptext holds Portuguese address-text helpers shared by the
// extractor and the query variant builder.
package ptext

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// smallWords are connective words dropped when normalizing street names.
var smallWords = map[string]bool{
	"DE": true, "DA": true, "DO": true, "DAS": true, "DOS": true, "E": true,
}

// StripAccents removes combining diacritical marks ("Goiânia" → "Goiania").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold uppercases and strips accents for case/accent-insensitive comparison.
func Fold(s string) string {
	return strings.ToUpper(StripAccents(s))
}

// CollapseSpaces trims and squeezes runs of whitespace to a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// OnlyDigits drops every non-digit rune.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCEP returns the 8-digit form of a Brazilian postal code when the
// input carries exactly eight digits, otherwise the trimmed input unchanged.
func NormalizeCEP(s string) string {
	d := OnlyDigits(s)
	if len(d) == 8 {
		return d
	}
	return strings.TrimSpace(s)
}

// TrimLeadingZeros normalizes a block/lot value: "040" → "40", "0" → "0".
// Alphanumeric suffixes are kept ("04A" → "4A"); punctuation noise is dropped.
func TrimLeadingZeros(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	v := b.String()
	trimmed := strings.TrimLeft(v, "0")
	if trimmed == "" && v != "" {
		return "0"
	}
	return trimmed
}

// DropSmallWords removes connective words from an uppercased token slice.
func DropSmallWords(tokens []string) []string {
	out := tokens[:0]
	for _, tok := range tokens {
		if smallWords[tok] && len(tok) <= 3 {
			continue
		}
		out = append(out, tok)
	}
	return out
}
