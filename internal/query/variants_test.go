package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaviva/stops-cli/internal/model"
)

func TestBuildOrdering(t *testing.T) {
	n := model.NormalizedAddress{
		Street:       "Rua JCA1",
		Block:        "40",
		Lot:          "27",
		Neighborhood: "Jardim Cristalino",
		City:         "Aparecida de Goiânia",
		State:        "GO",
		PostalCode:   "74915-230",
	}

	variants := NewBuilder(8).Build(n, "Rua JCA1 QD 40 LT 27 Jardim Cristalino")
	require.NotEmpty(t, variants)

	// Most specific first: street + CEP + city.
	assert.Equal(t, "Rua JCA1, 74915230, Aparecida de Goiânia, GO", variants[0])
	assert.LessOrEqual(t, len(variants), 8)
}

func TestBuildCapsVariants(t *testing.T) {
	n := model.NormalizedAddress{
		Street:       "Rua 25-E",
		Number:       "120",
		Block:        "40",
		Lot:          "27",
		Neighborhood: "Setor Central",
		City:         "Aparecida de Goiânia",
		PostalCode:   "74915230",
	}

	variants := NewBuilder(8).Build(n, "Rua 25-E 120 QD 40 LT 27 Setor Central")
	assert.LessOrEqual(t, len(variants), 8)

	variants = NewBuilder(4).Build(n, "Rua 25-E 120 QD 40 LT 27 Setor Central")
	assert.LessOrEqual(t, len(variants), 4)
}

func TestBuildDropsBlockLotFromSpecificVariants(t *testing.T) {
	n := model.NormalizedAddress{
		Street: "Rua 10",
		Block:  "40",
		Lot:    "27",
		City:   "Goiânia",
	}

	variants := NewBuilder(8).Build(n, "Rua 10 QD 40 LT 27 Goiânia")

	// The street-focused variants never carry quadra/lote values; only the
	// deliberately-full line may mention them.
	assert.NotContains(t, variants[0], "40")
	assert.NotContains(t, variants[0], "Quadra")
}

func TestBuildEmptyFieldsFallsBackToRaw(t *testing.T) {
	variants := NewBuilder(8).Build(model.NormalizedAddress{}, "algum texto livre")
	require.NotEmpty(t, variants)
	assert.Contains(t, variants[0], "algum texto livre")
}

func TestBuildDeduplicates(t *testing.T) {
	n := model.NormalizedAddress{Street: "Rua A", City: "Goiânia"}
	variants := NewBuilder(8).Build(n, "Rua A, Goiânia")

	seen := map[string]bool{}
	for _, v := range variants {
		key := strings.ToUpper(v)
		assert.False(t, seen[key], v)
		seen[key] = true
	}
}

func TestStreetVariants(t *testing.T) {
	variants := StreetVariants("Rua 25-E")

	assert.Contains(t, variants, "Rua 25-E")
	assert.Contains(t, variants, "Rua 25 - E")
	assert.Contains(t, variants, "Rua 25 E")
	assert.Contains(t, variants, "Rua vinte e cinco - E")
	assert.Contains(t, variants, "Rua vinte e cinco E")
}

func TestStreetVariantsPlainName(t *testing.T) {
	assert.Equal(t, []string{"Avenida Central"}, StreetVariants("Avenida Central"))
	assert.Nil(t, StreetVariants(""))
}
