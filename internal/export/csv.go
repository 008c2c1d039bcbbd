// Package export writes resolved stops to denormalized CSV files for route
// planning tools.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/rotaviva/stops-cli/internal/model"
)

var header = []string{
	"sequence", "original", "street", "number", "block", "lot",
	"neighborhood", "city", "state", "postal_code",
	"lat", "lng", "status", "reason", "notes",
}

// WriteCSV writes stops to path, creating or truncating it.
func WriteCSV(path string, stops []model.ResolvedStop) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := Write(f, stops); err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "export: close file")
}

// Write streams stops as CSV to w.
func Write(w io.Writer, stops []model.ResolvedStop) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, stop := range stops {
		if err := cw.Write(record(stop)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

func record(s model.ResolvedStop) []string {
	var lat, lng string
	if s.Position != nil {
		lat = strconv.FormatFloat(s.Position.Lat, 'f', 6, 64)
		lng = strconv.FormatFloat(s.Position.Lng, 'f', 6, 64)
	}
	return []string{
		s.Sequence,
		s.Original,
		s.Normalized.Street,
		s.Normalized.Number,
		s.Block,
		s.Lot,
		s.Neighborhood,
		s.City,
		s.Normalized.State,
		s.PostalCode,
		lat,
		lng,
		string(s.Status),
		string(s.Reason),
		s.Notes,
	}
}
