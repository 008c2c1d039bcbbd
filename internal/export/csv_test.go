package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaviva/stops-cli/internal/model"
)

func sampleStops() []model.ResolvedStop {
	return []model.ResolvedStop{
		{
			Sequence: "1",
			Original: "Rua 25-E, QD 40 LT 27, Setor Central",
			Normalized: model.NormalizedAddress{
				Street: "Rua 25-E",
				State:  "GO",
			},
			Position:     &model.Coordinate{Lat: -16.8231, Lng: -49.2471},
			Block:        "40",
			Lot:          "27",
			Neighborhood: "Setor Central",
			City:         "Aparecida de Goiânia",
			PostalCode:   "74915230",
			Status:       model.StatusOK,
			Reason:       model.ReasonOKConfident,
		},
		{
			Sequence: "2",
			Original: "endereço ilegível",
			Status:   model.StatusNotFound,
			Reason:   model.ReasonNoEvidence,
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleStops()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, header, records[0])

	first := records[1]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "Rua 25-E", first[2])
	assert.Equal(t, "40", first[4])
	assert.Equal(t, "27", first[5])
	assert.Equal(t, "-16.823100", first[10])
	assert.Equal(t, "-49.247100", first[11])
	assert.Equal(t, "OK", first[12])

	// Unresolved rows keep their place with empty coordinates.
	second := records[2]
	assert.Equal(t, "2", second[0])
	assert.Empty(t, second[10])
	assert.Equal(t, "NOT_FOUND", second[12])
	assert.Equal(t, "NO_EVIDENCE", second[13])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stops.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, WriteCSV(path, sampleStops()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Aparecida de Goiânia")
}
