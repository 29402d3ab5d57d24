package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadSlotRemap reads a JSON object mapping item ids to the id whose last
// digit is the item's slot, e.g. {"55001": "55006"}. Ids may be written as
// strings or numbers.
func LoadSlotRemap(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSlotRemap, path, err)
	}
	var table map[string]json.RawMessage
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSlotRemap, path, err)
	}

	out := make(map[string]string, len(table))
	for from, to := range table {
		var id string
		if err := json.Unmarshal(to, &id); err != nil {
			id = strings.TrimSpace(string(to))
			var n json.Number
			if err := json.Unmarshal(to, &n); err != nil {
				return nil, fmt.Errorf("%w: %s: id %q is neither string nor number", ErrSlotRemap, path, from)
			}
		}
		if id == "" {
			return nil, fmt.Errorf("%w: %s: empty id for %q", ErrSlotRemap, path, from)
		}
		out[from] = id
	}
	return out, nil
}
