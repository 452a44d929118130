package locale

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Advisory names a locally generated bot reply.
type Advisory string

const (
	AdvisoryInvalidQuery   Advisory = "invalid_query"
	AdvisoryNoResult       Advisory = "no_result"
	AdvisoryTransportError Advisory = "transport_error"
	AdvisoryBusy           Advisory = "busy"
)

// Table is the static text a language contributes to the chat.
type Table struct {
	Code          string
	UI            map[string]string
	Greetings     map[string]string
	SectionLabels []string
	Advisories    map[Advisory]string
}

// Catalog resolves tables by language code and falls back to a default
// language for missing entries.
type Catalog struct {
	tables   map[string]Table
	fallback string
}

// NewCatalog returns a Catalog over the supplied tables. fallback must be one
// of the table codes.
func NewCatalog(fallback string, tables ...Table) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]Table, len(tables)), fallback: fallback}
	for _, t := range tables {
		c.tables[t.Code] = t
	}
	if _, ok := c.tables[fallback]; !ok {
		return nil, errors.Errorf("fallback language %q has no table", fallback)
	}
	return c, nil
}

// DefaultCatalog returns the built-in English and Tamil tables.
func DefaultCatalog(fallback string) (*Catalog, error) {
	return NewCatalog(fallback, Seed()...)
}

// Fallback returns the fallback language code.
func (c *Catalog) Fallback() string { return c.fallback }

// Has reports whether a table exists for code.
func (c *Catalog) Has(code string) bool {
	_, ok := c.tables[code]
	return ok
}

// Codes lists the known language codes in sorted order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.tables))
	for code := range c.tables {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// UI returns the UI labels of a language, or nil when the language is unknown.
func (c *Catalog) UI(code string) map[string]string {
	t, ok := c.tables[code]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(t.UI))
	for k, v := range t.UI {
		out[k] = v
	}
	return out
}

// Greeting looks up a canned reply for a normalized greeting in the given
// language.
func (c *Catalog) Greeting(code, query string) (string, bool) {
	t, ok := c.tables[code]
	if !ok {
		return "", false
	}
	reply, ok := t.Greetings[NormalizeGreeting(query)]
	return reply, ok
}

// Advisory returns the advisory text for code, falling back to the fallback
// language when the table lacks it.
func (c *Catalog) Advisory(code string, key Advisory) string {
	if t, ok := c.tables[code]; ok {
		if text, ok := t.Advisories[key]; ok {
			return text
		}
	}
	return c.tables[c.fallback].Advisories[key]
}

// SectionLabels returns the section labels of a language plus the fallback
// language's labels.
func (c *Catalog) SectionLabels(code string) []string {
	labels := append([]string(nil), c.tables[c.fallback].SectionLabels...)
	if code != c.fallback {
		labels = append(labels, c.tables[code].SectionLabels...)
	}
	return labels
}

// AllSectionLabels returns the labels of every table.
func (c *Catalog) AllSectionLabels() []string {
	var labels []string
	for _, code := range c.Codes() {
		labels = append(labels, c.tables[code].SectionLabels...)
	}
	return labels
}

// NormalizeGreeting lowercases and trims a query and strips trailing
// punctuation so "Hello!" matches "hello".
func NormalizeGreeting(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.TrimRight(q, "!.?, ")
}
