// Package query derives geocoder search strings from normalized address
// fields, ordered by decreasing specificity.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// reNumberLetter finds number-letter street designators ("25-E", "25 E", "25E").
var reNumberLetter = regexp.MustCompile(`\b(\d{1,3})\s*-?\s*([A-Za-z])\b`)

// Builder assembles the ordered query variant list. Block and lot values are
// never included in the query text: they are cadastral identifiers, not
// address components, and they pollute provider search.
type Builder struct {
	max int
}

// NewBuilder creates a Builder capped at max variants (8 when max <= 0).
func NewBuilder(max int) *Builder {
	if max <= 0 {
		max = 8
	}
	return &Builder{max: max}
}

// Build returns the deduplicated variant list for one row, most specific
// first: street+number+CEP+city, street-name variants with CEP, the full
// normalized line without block/lot tokens, street+neighborhood+city, the
// full line, and finally the cleaned raw text.
func (b *Builder) Build(n model.NormalizedAddress, raw string) []string {
	cep := ptext.NormalizeCEP(n.PostalCode)
	city := strings.TrimSpace(n.City)
	neighborhood := strings.TrimSpace(n.Neighborhood)
	state := strings.TrimSpace(n.State)
	if state == "" {
		state = "GO"
	}

	full := cleanForProvider(normalizedLine(n, raw))
	fullNoQL := cleanForProvider(stripBlockLot(full))

	streetNumber := cleanForProvider(joinParts(n.Street, n.Number))

	// A variant made of nothing but the state code is noise, so the
	// street-focused forms require at least one distinguishing field.
	var streetCEP, streetCity string
	if streetNumber != "" || cep != "" {
		streetCEP = cleanForProvider(joinParts(streetNumber, cep, city, state))
	}
	if streetNumber != "" || neighborhood != "" {
		streetCity = cleanForProvider(joinParts(streetNumber, neighborhood, city, state))
	}
	rawClean := cleanForProvider(stripBlockLot(raw))

	var variants []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" {
			variants = append(variants, v)
		}
	}

	add(streetCEP)
	for _, sv := range StreetVariants(n.Street) {
		add(cleanForProvider(joinParts(joinParts(sv, n.Number), cep, city, state)))
	}
	add(fullNoQL)
	add(streetCity)
	for _, sv := range StreetVariants(n.Street) {
		add(cleanForProvider(joinParts(joinParts(sv, n.Number), neighborhood, city, state)))
	}
	add(full)
	add(rawClean)

	return dedupe(variants, b.max)
}

// StreetVariants expands a street name whose designator is a number-letter
// pair into its written variants, including the spelled-out Portuguese
// numeral for 0–99 ("Rua 25-E" → "Rua 25 - E", "Rua vinte e cinco - E", …).
func StreetVariants(street string) []string {
	base := strings.TrimSpace(street)
	if base == "" {
		return nil
	}

	seen := map[string]bool{base: true}
	out := []string{base}
	add := func(v string) {
		v = ptext.CollapseSpaces(v)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	m := reNumberLetter.FindStringSubmatch(base)
	if m == nil {
		return out
	}

	num, err := strconv.Atoi(m[1])
	if err != nil {
		return out
	}
	letter := strings.ToUpper(m[2])
	prefix := ptext.CollapseSpaces(strings.Replace(base, m[0], "", 1))
	if prefix == "" {
		prefix = "Rua"
	}

	add(prefix + " " + m[1] + "-" + letter)
	add(prefix + " " + m[1] + " - " + letter)
	add(prefix + " " + m[1] + " " + letter)

	if num >= 0 && num <= 99 {
		words := ptext.NumberToWords(num)
		add(prefix + " " + words + " - " + letter)
		add(prefix + " " + words + " " + letter)
	}

	return out
}

// normalizedLine renders the full normalized address as one line, falling
// back to the raw text when no field is populated.
func normalizedLine(n model.NormalizedAddress, fallback string) string {
	var parts []string

	if sn := joinParts(n.Street, n.Number); sn != "" {
		parts = append(parts, sn)
	}

	var ql []string
	if n.Block != "" {
		ql = append(ql, "Quadra "+n.Block)
	}
	if n.Lot != "" {
		ql = append(ql, "Lote "+n.Lot)
	}
	if len(ql) > 0 {
		parts = append(parts, strings.Join(ql, " "))
	}

	for _, p := range []string{n.Neighborhood, n.City, n.State, ptext.NormalizeCEP(n.PostalCode)} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}

	line := strings.Join(parts, ", ")
	if line == "" {
		return fallback
	}
	return line
}

var (
	reQueryBlock = regexp.MustCompile(`(?i)\b(QUADRA|QD|Q\.)\s*[-:]?\s*[A-Z0-9\-]+\b`)
	reQueryLot   = regexp.MustCompile(`(?i)\b(LOTE|LT|L\.)\s*[-:]?\s*[A-Z0-9\-]+\b`)
)

// stripBlockLot removes quadra/lote tokens from query text.
func stripBlockLot(q string) string {
	t := reQueryBlock.ReplaceAllString(q, " ")
	t = reQueryLot.ReplaceAllString(t, " ")
	return t
}

var (
	reQD = regexp.MustCompile(`(?i)\bQD\.?\s*`)
	reLT = regexp.MustCompile(`(?i)\bLT\.?\s*`)
)

// cleanForProvider expands abbreviations the provider mishandles and fixes
// comma/space noise left by field assembly.
func cleanForProvider(s string) string {
	t := reQD.ReplaceAllString(s, "Quadra ")
	t = reLT.ReplaceAllString(t, "Lote ")
	t = strings.ReplaceAll(t, " ,", ",")
	for strings.Contains(t, ",,") {
		t = strings.ReplaceAll(t, ",,", ",")
	}
	t = strings.Trim(t, ", ")
	return ptext.CollapseSpaces(t)
}

func joinParts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}

func dedupe(variants []string, max int) []string {
	seen := make(map[string]bool, len(variants))
	var out []string
	for _, v := range variants {
		key := ptext.Fold(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
