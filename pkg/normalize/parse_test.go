package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	f, err := ParseFields(`{"street":"Rua JCA1","number":"","block":"3","lot":"27","neighborhood":"Jardim Cristalino","city":"Aparecida de Goiânia","state":"GO","postal_code":"74915230","notes":"fundos"}`)
	require.NoError(t, err)

	assert.Equal(t, "Rua JCA1", f.Street)
	assert.Equal(t, "3", f.Block)
	assert.Equal(t, "27", f.Lot)
	assert.Equal(t, "GO", f.State)
	assert.Equal(t, "fundos", f.Notes)
}

func TestParseFieldsIgnoresSurroundingProse(t *testing.T) {
	f, err := ParseFields("Aqui está o resultado:\n```json\n{\"street\":\"Rua 10\",\"block\":\"5\"}\n```\nEspero ter ajudado.")
	require.NoError(t, err)
	assert.Equal(t, "Rua 10", f.Street)
	assert.Equal(t, "5", f.Block)
	assert.Empty(t, f.Lot)
}

func TestParseFieldsTrimsWhitespace(t *testing.T) {
	f, err := ParseFields(`{"street":" Rua 10 ","city":"  Goiânia"}`)
	require.NoError(t, err)
	assert.Equal(t, "Rua 10", f.Street)
	assert.Equal(t, "Goiânia", f.City)
}

func TestParseFieldsNoObject(t *testing.T) {
	_, err := ParseFields("não consegui processar")
	require.Error(t, err)

	_, err = ParseFields("")
	require.Error(t, err)
}

func TestParseFieldsMalformedJSON(t *testing.T) {
	_, err := ParseFields(`{"street": unquoted}`)
	require.Error(t, err)
}
