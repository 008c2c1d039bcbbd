package ptext

import (
	"strconv"
	"strings"
)

// Street names in Goiânia and Aparecida are frequently plain numbers, written
// either as digits ("Rua 25") or spelled out ("Rua vinte e cinco"). Both
// directions of the 0–99 conversion are needed: digits→words to widen
// geocoder queries, words→digits to canonicalize extracted street names.

var unitWords = map[string]int{
	"ZERO": 0, "UM": 1, "UMA": 1, "DOIS": 2, "DUAS": 2,
	"TRES": 3, "QUATRO": 4, "CINCO": 5, "SEIS": 6,
	"SETE": 7, "OITO": 8, "NOVE": 9,
}

var teenWords = map[string]int{
	"DEZ": 10, "ONZE": 11, "DOZE": 12, "TREZE": 13,
	"QUATORZE": 14, "CATORZE": 14, "QUINZE": 15,
	"DEZESSEIS": 16, "DEZESSETE": 17, "DEZOITO": 18, "DEZENOVE": 19,
}

var tenWords = map[string]int{
	"VINTE": 20, "TRINTA": 30, "QUARENTA": 40, "CINQUENTA": 50,
	"SESSENTA": 60, "SETENTA": 70, "OITENTA": 80, "NOVENTA": 90,
}

var unitNames = []string{
	"zero", "um", "dois", "tres", "quatro", "cinco",
	"seis", "sete", "oito", "nove", "dez", "onze", "doze", "treze",
	"quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove",
}

var tenNames = map[int]string{
	20: "vinte", 30: "trinta", 40: "quarenta", 50: "cinquenta",
	60: "sessenta", 70: "setenta", 80: "oitenta", 90: "noventa",
}

// WordsToNumber converts a spelled-out Portuguese numeral phrase of up to
// three tokens ("VINTE E CINCO") to its value. Accent-insensitive.
func WordsToNumber(phrase string) (int, bool) {
	w := strings.Fields(Fold(phrase))
	switch len(w) {
	case 1:
		if n, ok := unitWords[w[0]]; ok {
			return n, true
		}
		if n, ok := teenWords[w[0]]; ok {
			return n, true
		}
		if n, ok := tenWords[w[0]]; ok {
			return n, true
		}
	case 2:
		if t, ok := tenWords[w[0]]; ok {
			if u, ok := unitWords[w[1]]; ok {
				return t + u, true
			}
		}
	case 3:
		if t, ok := tenWords[w[0]]; ok && w[1] == "E" {
			if u, ok := unitWords[w[2]]; ok {
				return t + u, true
			}
		}
	}
	return 0, false
}

// NumberToWords spells out 0–99 in Portuguese ("25" → "vinte e cinco").
// Out-of-range values are returned as digits.
func NumberToWords(n int) string {
	if n < 0 || n > 99 {
		return strconv.Itoa(n)
	}
	if n < 20 {
		return unitNames[n]
	}
	tens := n / 10 * 10
	ones := n % 10
	if ones == 0 {
		return tenNames[tens]
	}
	return tenNames[tens] + " e " + unitNames[ones]
}

// ReplaceSpelledNumbers canonicalizes the first spelled-out numeral in a
// token stream to digits, longest phrase first ("VINTE E CINCO" before
// "VINTE"). Used to make "Rua vinte e cinco" comparable with "Rua 25".
func ReplaceSpelledNumbers(tokens []string) []string {
	for i := 0; i < len(tokens); i++ {
		for span := 3; span >= 1; span-- {
			if i+span > len(tokens) {
				continue
			}
			if n, ok := WordsToNumber(strings.Join(tokens[i:i+span], " ")); ok {
				out := append([]string{}, tokens[:i]...)
				out = append(out, strconv.Itoa(n))
				out = append(out, tokens[i+span:]...)
				return out
			}
		}
	}
	return tokens
}

