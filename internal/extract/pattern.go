package extract

import (
	"regexp"
	"strings"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// Block/lot tokens appear in several surface forms: explicit keyword+value
// ("QUADRA 40"), abbreviated ("QD40"), glued pairs ("QD40LT27"), reversed
// order ("L27 Q40") and, as a last resort, a bare numeric pair ("40/27")
// when a block/lot keyword appears elsewhere in the text.
var (
	reStreet = regexp.MustCompile(`\b(RUA|AVENIDA|AV\.?|ALAMEDA|TRAVESSA|TV\.?|VIELA|VIA|R\.?)\s+([A-Z0-9][A-Z0-9\-\s\.]*)`)

	reBlock = regexp.MustCompile(`\b(?:QUADRA|QD|Q)\.?\s*[:\-]?\s*0*([0-9]{1,4}[A-Z]?)\b`)
	reLot   = regexp.MustCompile(`\b(?:LOTE|LT|L)\.?\s*[:\-]?\s*0*([0-9]{1,4}[A-Z]?)\b`)

	reGluedBlockFirst = regexp.MustCompile(`\bQ(?:UADRA|D)?\.?\s*0*([0-9]{1,4})\s*[-/]?\s*L(?:OTE|T)?\.?\s*0*([0-9]{1,4}[A-Z]?)\b`)
	reGluedLotFirst   = regexp.MustCompile(`\bL(?:OTE|T)?\.?\s*0*([0-9]{1,4})\s*[-/]?\s*Q(?:UADRA|D)?\.?\s*0*([0-9]{1,4}[A-Z]?)\b`)

	reNumericPair = regexp.MustCompile(`\b0*([0-9]{1,4})\s*/\s*0*([0-9]{1,4})\b`)

	reBlockLotKeyword = regexp.MustCompile(`\b(?:QD|QUADRA|Q|LT|LOTE|L)\.?\b`)

	reCondominium = regexp.MustCompile(`\b(?:APT|APTO|APART|APARTAMENTO|BLOCO|TORRE|EDIF|EDIFICIO|ANDAR|SALA)\b`)
)

// streetPrefixes maps uppercased street-type prefixes to their display form.
var streetPrefixes = map[string]string{
	"RUA": "Rua", "AVENIDA": "Avenida", "AV": "Av.", "AV.": "Av.",
	"ALAMEDA": "Alameda", "TRAVESSA": "Travessa", "TV": "Tv.", "TV.": "Tv.",
	"VIELA": "Viela", "VIA": "Via", "R": "R.", "R.": "R.",
}

// HasBlockLotToken reports whether the text carries any quadra/lote keyword.
func HasBlockLotToken(raw string) bool {
	return reBlockLotKeyword.MatchString(ptext.Fold(raw))
}

// IsCondominium reports whether the raw text describes an apartment or
// building (tower, floor, unit vocabulary) without any block/lot token.
// Such rows are classified CONDOMINIUM and never geocoded.
func IsCondominium(raw string) bool {
	up := ptext.Fold(raw)
	return reCondominium.MatchString(up) && !reBlockLotKeyword.MatchString(up)
}

// extractPattern is the deterministic extraction strategy. It recognizes the
// street-type prefix and the block/lot surface forms, leaving every other
// field empty.
func extractPattern(raw string) model.NormalizedAddress {
	up := ptext.CollapseSpaces(ptext.Fold(raw))
	var n model.NormalizedAddress

	if m := reStreet.FindStringSubmatch(up); m != nil {
		prefix := streetPrefixes[strings.TrimSpace(m[1])]
		if prefix == "" {
			prefix = strings.TrimSpace(m[1])
		}
		name := strings.TrimSpace(m[2])
		// Stop the street name at the first block/lot token.
		if loc := reBlockLotKeyword.FindStringIndex(name); loc != nil {
			name = strings.TrimSpace(name[:loc[0]])
		}
		name = strings.Trim(name, "-. ")
		if name != "" {
			n.Street = prefix + " " + ptext.CollapseSpaces(name)
		}
	}

	n.Block, n.Lot = extractBlockLot(up)
	return n
}

// extractBlockLot finds block and lot values in any supported surface form.
// Later matches win, mirroring how couriers append corrections at the end.
func extractBlockLot(up string) (block, lot string) {
	if m := reGluedBlockFirst.FindStringSubmatch(up); m != nil {
		block, lot = m[1], m[2]
	}
	if m := reGluedLotFirst.FindStringSubmatch(up); m != nil {
		lot, block = m[1], m[2]
	}

	for _, m := range reBlock.FindAllStringSubmatch(up, -1) {
		block = m[1]
	}
	for _, m := range reLot.FindAllStringSubmatch(up, -1) {
		lot = m[1]
	}

	// Conservative numeric-pair fallback ("QD. 40/27"): only when a block/lot
	// keyword shows up somewhere in the text.
	if lot == "" && reBlockLotKeyword.MatchString(up) {
		if m := reNumericPair.FindStringSubmatch(up); m != nil {
			block, lot = m[1], m[2]
		}
	}

	return ptext.TrimLeadingZeros(block), ptext.TrimLeadingZeros(lot)
}

// stripBlockLotTokens removes recognized block/lot tokens and separator noise
// from free text, used to clean the notes field.
func stripBlockLotTokens(s string) string {
	t := reGluedBlockFirst.ReplaceAllString(s, " ")
	t = reGluedLotFirst.ReplaceAllString(t, " ")
	t = reBlock.ReplaceAllString(t, " ")
	t = reLot.ReplaceAllString(t, " ")
	t = strings.NewReplacer("-", " ", "–", " ", "—", " ", "|", " ").Replace(t)
	return ptext.CollapseSpaces(t)
}
