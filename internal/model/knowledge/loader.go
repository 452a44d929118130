package knowledge

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// LoadFile reads a content file: a JSON object whose keys are entry indexes
// ("0", "1", ...) and whose values are entries. Entries are returned in
// index order; a missing ID is replaced by the index.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read knowledge file")
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse knowledge file %s", path)
	}
	return entries, nil
}

// Parse decodes content file bytes. See LoadFile.
func Parse(data []byte) ([]Entry, error) {
	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		if errA == nil || errB == nil {
			return errA == nil
		}
		return keys[i] < keys[j]
	})

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entry := raw[k]
		if entry.ID == "" {
			entry.ID = k
		}
		if entry.Title == "" {
			return nil, errors.Errorf("entry %s has no title", k)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
