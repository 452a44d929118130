package knowledge

import (
	"encoding/json"
	"strings"
)

// Entry is one article of the veterinary knowledge base.
type Entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Definition  string   `json:"definition"`
	Symptoms    Lines    `json:"symptoms,omitempty"`
	Treatment   Lines    `json:"treatment,omitempty"`
	Ingredients Lines    `json:"ingredients,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Lines accepts either a JSON array of strings or a single newline separated
// string, the two shapes found in exported content files.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = compact(items)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*l = compact(strings.Split(text, "\n"))
	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Terms returns the lowercase keywords of the entry, falling back to the
// words of its title when no keywords were curated.
func (e Entry) Terms() []string {
	source := e.Keywords
	if len(source) == 0 {
		source = strings.Fields(e.Title)
	}
	terms := make([]string, 0, len(source))
	for _, term := range source {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
