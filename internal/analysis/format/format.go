// Package format turns raw answer text into a sanitized document.Document.
//
// The accepted syntax is a small markdown subset: blank-line separated
// blocks, "**bold**" spans, bullet lines ("* ", "- ", "• ", "🟢 ") and
// labeled sections introduced by a known label such as "Symptoms:".
// Formatting never fails; text that does not parse is kept as literal text.
package format

import (
	"strings"

	"github.com/zhouzirui/vetchat/internal/model/document"
	"github.com/zhouzirui/vetchat/internal/model/locale"
)

const boldDelimiter = "**"

var bulletMarkers = []string{"*", "-", "•", "🟢"}

// Formatter converts raw text into documents. It holds no mutable state and is
// safe for concurrent use.
type Formatter struct {
	labels map[string]struct{}
}

// New returns a Formatter recognizing the given section labels. Matching is
// case-insensitive.
func New(labels ...string) *Formatter {
	f := &Formatter{labels: make(map[string]struct{}, len(labels))}
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		f.labels[strings.ToLower(label)] = struct{}{}
	}
	return f
}

var defaultFormatter = New(defaultLabels()...)

func defaultLabels() []string {
	var labels []string
	for _, table := range locale.Seed() {
		labels = append(labels, table.SectionLabels...)
	}
	return labels
}

// Format formats raw with the labels of every built-in language.
func Format(raw string) document.Document {
	return defaultFormatter.Format(raw)
}

// Format parses raw into a document. Empty input yields a document with no
// blocks; whitespace-only input yields a single empty paragraph.
func (f *Formatter) Format(raw string) document.Document {
	if raw == "" {
		return document.Document{}
	}

	candidates := f.split(normalizeNewlines(raw))
	if len(candidates) == 0 {
		return document.Document{Blocks: []document.Block{document.Paragraph{}}}
	}

	blocks := make([]document.Block, 0, len(candidates))
	for _, lines := range candidates {
		blocks = append(blocks, f.formatCandidate(lines))
	}
	return document.Document{Blocks: blocks}
}

// split groups non-blank lines into candidates. A blank line ends the current
// candidate, and so does a line opening a labeled section.
func (f *Formatter) split(text string) [][]string {
	var (
		candidates [][]string
		current    []string
	)
	flush := func() {
		if len(current) > 0 {
			candidates = append(candidates, current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if _, _, ok := f.matchLabel(line); ok {
			flush()
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	flush()
	return candidates
}

func (f *Formatter) formatCandidate(lines []string) document.Block {
	label, rest, ok := f.matchLabel(lines[0])
	if !ok {
		return formatBody(lines)
	}

	body := lines[1:]
	if strings.TrimSpace(rest) != "" {
		body = append([]string{rest}, body...)
	}
	return document.LabeledSection{Label: sanitize(label), Body: formatBody(body)}
}

// matchLabel recognizes "Label:", "**Label:**" and "**Label**:" prefixes and
// returns the label as written plus whatever follows the separator.
func (f *Formatter) matchLabel(line string) (label, rest string, ok bool) {
	s := strings.TrimSpace(line)
	bold := strings.HasPrefix(s, boldDelimiter)
	if bold {
		s = s[len(boldDelimiter):]
	}

	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}

	token := strings.TrimSpace(s[:idx])
	rest = s[idx+1:]
	if bold {
		switch {
		case strings.HasSuffix(token, boldDelimiter):
			token = strings.TrimSpace(strings.TrimSuffix(token, boldDelimiter))
		case strings.HasPrefix(rest, boldDelimiter):
			rest = rest[len(boldDelimiter):]
		default:
			return "", "", false
		}
	}

	if _, known := f.labels[strings.ToLower(token)]; !known {
		return "", "", false
	}
	return token, strings.TrimSpace(rest), true
}

func formatBody(lines []string) document.Block {
	if len(lines) == 0 {
		return document.Paragraph{}
	}
	if _, ok := bulletContent(lines[0]); ok {
		return formatList(lines)
	}
	return formatParagraph(lines)
}

func formatList(lines []string) document.BulletList {
	items := make([][]document.Run, 0, len(lines))
	for _, line := range lines {
		if content, ok := bulletContent(line); ok {
			items = append(items, parseInline(content))
			continue
		}
		// lines[0] is always a bullet, so there is a previous item here.
		last := len(items) - 1
		items[last] = append(items[last], document.Text(" "+sanitize(strings.TrimSpace(line))))
	}
	return document.BulletList{Items: items}
}

func formatParagraph(lines []string) document.Paragraph {
	var runs []document.Run
	for i, line := range lines {
		if i > 0 {
			runs = append(runs, document.LineBreak())
		}
		runs = append(runs, parseInline(strings.TrimSpace(line))...)
	}
	return document.Paragraph{Runs: runs}
}

// bulletContent reports whether line starts with a bullet marker followed by
// whitespace (or nothing) and returns the text after the marker.
func bulletContent(line string) (string, bool) {
	s := strings.TrimLeft(line, " \t")
	for _, marker := range bulletMarkers {
		if !strings.HasPrefix(s, marker) {
			continue
		}
		after := s[len(marker):]
		if after == "" {
			return "", true
		}
		if after[0] == ' ' || after[0] == '\t' {
			return strings.TrimSpace(after), true
		}
	}
	return "", false
}

// parseInline splits a single line into Text and Bold runs. A delimiter
// without a partner, or one enclosing only whitespace, stays literal.
func parseInline(s string) []document.Run {
	var runs []document.Run
	for s != "" {
		open := strings.Index(s, boldDelimiter)
		if open < 0 {
			runs = appendText(runs, s)
			break
		}
		closeAt := strings.Index(s[open+len(boldDelimiter):], boldDelimiter)
		if closeAt < 0 {
			runs = appendText(runs, s)
			break
		}

		end := open + 2*len(boldDelimiter) + closeAt
		inner := s[open+len(boldDelimiter) : open+len(boldDelimiter)+closeAt]
		runs = appendText(runs, s[:open])
		if strings.TrimSpace(inner) == "" {
			runs = appendText(runs, s[open:end])
		} else {
			runs = append(runs, document.Bold(sanitize(inner)))
		}
		s = s[end:]
	}
	return runs
}

func appendText(runs []document.Run, s string) []document.Run {
	if s == "" {
		return runs
	}
	text := sanitize(s)
	if n := len(runs); n > 0 && runs[n-1].Kind == document.RunText {
		runs[n-1].Text += text
		return runs
	}
	return append(runs, document.Text(text))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
