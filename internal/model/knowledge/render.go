package knowledge

import "strings"

const bulletMarker = "🟢 "

// Render writes entries as markdown-lite answer text: a bold title, a
// definition line and one bulleted section per non-empty list.
func Render(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, renderEntry(e))
	}
	return strings.Join(parts, "\n\n")
}

func renderEntry(e Entry) string {
	sections := []string{"**" + strings.TrimSpace(e.Title) + "**"}
	if def := strings.TrimSpace(e.Definition); def != "" {
		sections = append(sections, "Definition: "+def)
	}
	sections = appendList(sections, "Symptoms", e.Symptoms)
	sections = appendList(sections, "Treatment", e.Treatment)
	sections = appendList(sections, "Ingredients", e.Ingredients)
	return strings.Join(sections, "\n\n")
}

func appendList(sections []string, label string, items Lines) []string {
	if len(items) == 0 {
		return sections
	}
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(":")
	for _, item := range items {
		b.WriteString("\n")
		b.WriteString(bulletMarker)
		b.WriteString(item)
	}
	return append(sections, b.String())
}
