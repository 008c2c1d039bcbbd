// Package ingest reads delivery spreadsheets into raw address rows.
package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/rotaviva/stops-cli/internal/model"
	"github.com/rotaviva/stops-cli/internal/ptext"
)

// Column aliases tried against the header row. Carrier exports are not
// consistent about naming, casing or accents.
var (
	sequenceAliases     = []string{"sequencia", "seq", "sequence", "parada", "stop", "ordem"}
	addressAliases      = []string{"endereco", "address", "destino", "logradouro", "endereco completo"}
	neighborhoodAliases = []string{"bairro", "setor", "neighborhood"}
	cityAliases         = []string{"cidade", "municipio", "city"}
	postalCodeAliases   = []string{"cep", "postal code", "zip"}
)

// Options configures spreadsheet reading.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads an XLSX file into raw rows. The header row is located by
// column-name matching; rows with no address text are kept (they resolve to
// NOT_FOUND) so output row counts always match the input.
func ReadXLSX(path string, opts Options) ([]model.RawAddressRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: sheet %q is empty", sheet.Name)
	}

	cols := mapColumns(rowToStrings(sheet.Rows[0]))
	if cols.address < 0 {
		return nil, eris.New("ingest: no address column found in header row")
	}

	rows := make([]model.RawAddressRow, 0, len(sheet.Rows)-1)
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if allEmpty(cells) {
			continue
		}
		raw := model.RawAddressRow{
			Sequence:     cols.get(cells, cols.sequence),
			Address:      cols.get(cells, cols.address),
			Neighborhood: cols.get(cells, cols.neighborhood),
			City:         cols.get(cells, cols.city),
			PostalCode:   ptext.NormalizeCEP(cols.get(cells, cols.postalCode)),
		}
		if raw.Sequence == "" {
			raw.Sequence = strconv.Itoa(i + 1)
		}
		rows = append(rows, raw)
	}

	return rows, nil
}

type columnMap struct {
	sequence     int
	address      int
	neighborhood int
	city         int
	postalCode   int
}

func mapColumns(header []string) columnMap {
	cols := columnMap{sequence: -1, address: -1, neighborhood: -1, city: -1, postalCode: -1}
	for i, name := range header {
		folded := ptext.Fold(name)
		switch {
		case cols.sequence < 0 && matchesAlias(folded, sequenceAliases):
			cols.sequence = i
		case cols.address < 0 && matchesAlias(folded, addressAliases):
			cols.address = i
		case cols.neighborhood < 0 && matchesAlias(folded, neighborhoodAliases):
			cols.neighborhood = i
		case cols.city < 0 && matchesAlias(folded, cityAliases):
			cols.city = i
		case cols.postalCode < 0 && matchesAlias(folded, postalCodeAliases):
			cols.postalCode = i
		}
	}
	return cols
}

func matchesAlias(folded string, aliases []string) bool {
	for _, alias := range aliases {
		if folded == strings.ToUpper(alias) || strings.HasPrefix(folded, strings.ToUpper(alias)+" ") {
			return true
		}
	}
	return false
}

func (c columnMap) get(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
