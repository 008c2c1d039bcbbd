package normalize

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseFields extracts the first JSON object from model output and decodes it
// into Fields. Models sometimes wrap the object in prose or code fences, so
// everything outside the outermost braces is ignored.
func ParseFields(text string) (*Fields, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("normalize: no JSON object in response")
	}

	var f Fields
	if err := json.Unmarshal([]byte(text[start:end+1]), &f); err != nil {
		return nil, eris.Wrap(err, "normalize: decode response")
	}

	f.Street = strings.TrimSpace(f.Street)
	f.Number = strings.TrimSpace(f.Number)
	f.Block = strings.TrimSpace(f.Block)
	f.Lot = strings.TrimSpace(f.Lot)
	f.Neighborhood = strings.TrimSpace(f.Neighborhood)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Notes = strings.TrimSpace(f.Notes)

	return &f, nil
}
