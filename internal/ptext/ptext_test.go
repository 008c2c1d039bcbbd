package ptext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "Goiania", StripAccents("Goiânia"))
	assert.Equal(t, "Setor Sao Jose", StripAccents("Setor São José"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "APARECIDA DE GOIANIA", Fold("Aparecida de Goiânia"))
	assert.Equal(t, Fold("SETOR CENTRAL"), Fold("setor central"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Rua 25 E", CollapseSpaces("  Rua   25\tE  "))
	assert.Equal(t, "", CollapseSpaces("   "))
}

func TestNormalizeCEP(t *testing.T) {
	assert.Equal(t, "74915230", NormalizeCEP("74.915-230"))
	assert.Equal(t, "74915230", NormalizeCEP("74915230"))
	// Not eight digits: returned trimmed, unchanged.
	assert.Equal(t, "7491", NormalizeCEP(" 7491 "))
	assert.Equal(t, "", NormalizeCEP(""))
}

func TestTrimLeadingZeros(t *testing.T) {
	assert.Equal(t, "40", TrimLeadingZeros("040"))
	assert.Equal(t, "40", TrimLeadingZeros("40"))
	assert.Equal(t, "0", TrimLeadingZeros("0"))
	assert.Equal(t, "0", TrimLeadingZeros("000"))
	assert.Equal(t, "4A", TrimLeadingZeros("04a"))
	assert.Equal(t, "27", TrimLeadingZeros(" 27. "))
	assert.Equal(t, "", TrimLeadingZeros(""))
}

func TestWordsToNumber(t *testing.T) {
	cases := []struct {
		phrase string
		want   int
	}{
		{"cinco", 5},
		{"dez", 10},
		{"quinze", 15},
		{"vinte", 20},
		{"vinte e cinco", 25},
		{"VINTE E CINCO", 25},
		{"trinta e sete", 37},
		{"noventa e nove", 99},
		{"três", 3},
	}
	for _, tc := range cases {
		n, ok := WordsToNumber(tc.phrase)
		assert.True(t, ok, tc.phrase)
		assert.Equal(t, tc.want, n, tc.phrase)
	}

	_, ok := WordsToNumber("banana")
	assert.False(t, ok)
	_, ok = WordsToNumber("vinte banana")
	assert.False(t, ok)
}

func TestNumberToWords(t *testing.T) {
	assert.Equal(t, "zero", NumberToWords(0))
	assert.Equal(t, "cinco", NumberToWords(5))
	assert.Equal(t, "dezenove", NumberToWords(19))
	assert.Equal(t, "vinte", NumberToWords(20))
	assert.Equal(t, "vinte e cinco", NumberToWords(25))
	assert.Equal(t, "noventa e nove", NumberToWords(99))
	assert.Equal(t, "100", NumberToWords(100))
}

func TestNumberToWordsRoundTrip(t *testing.T) {
	for n := 0; n <= 99; n++ {
		got, ok := WordsToNumber(NumberToWords(n))
		assert.True(t, ok, n)
		assert.Equal(t, n, got)
	}
}

func TestReplaceSpelledNumbers(t *testing.T) {
	assert.Equal(t,
		[]string{"RUA", "25", "SETOR"},
		ReplaceSpelledNumbers([]string{"RUA", "VINTE", "E", "CINCO", "SETOR"}))
	assert.Equal(t,
		[]string{"RUA", "10"},
		ReplaceSpelledNumbers([]string{"RUA", "DEZ"}))
	assert.Equal(t,
		[]string{"RUA", "JCA1"},
		ReplaceSpelledNumbers([]string{"RUA", "JCA1"}))
}

func TestDropSmallWords(t *testing.T) {
	assert.Equal(t,
		[]string{"PRACA", "BANDEIRAS"},
		DropSmallWords([]string{"PRACA", "DAS", "BANDEIRAS"}))
}
