package document

import (
	"encoding/json"
	"strings"
)

// RunKind identifies the inline element a Run represents.
type RunKind string

const (
	RunText      RunKind = "text"
	RunBold      RunKind = "bold"
	RunLineBreak RunKind = "break"
)

// Run is an inline element. Text is already sanitized and must be treated
// as literal display content by every renderer.
type Run struct {
	Kind RunKind `json:"kind"`
	Text string  `json:"text,omitempty"`
}

// Text returns a plain text run.
func Text(s string) Run { return Run{Kind: RunText, Text: s} }

// Bold returns an emphasized run.
func Bold(s string) Run { return Run{Kind: RunBold, Text: s} }

// LineBreak returns a hard line break run.
func LineBreak() Run { return Run{Kind: RunLineBreak} }

// BlockKind identifies the Block variant.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockSection   BlockKind = "section"
)

// Block is one of Paragraph, BulletList or LabeledSection.
type Block interface {
	Kind() BlockKind
}

// Paragraph is a sequence of runs separated by LineBreak runs.
type Paragraph struct {
	Runs []Run
}

func (Paragraph) Kind() BlockKind { return BlockParagraph }

func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type BlockKind `json:"type"`
		Runs []Run     `json:"runs"`
	}{BlockParagraph, nonNilRuns(p.Runs)})
}

// BulletList holds one run sequence per item.
type BulletList struct {
	Items [][]Run
}

func (BulletList) Kind() BlockKind { return BlockList }

func (l BulletList) MarshalJSON() ([]byte, error) {
	items := make([][]Run, len(l.Items))
	for i, item := range l.Items {
		items[i] = nonNilRuns(item)
	}
	return json.Marshal(struct {
		Type  BlockKind `json:"type"`
		Items [][]Run   `json:"items"`
	}{BlockList, items})
}

// LabeledSection is a named block such as "Symptoms" or "Treatment".
type LabeledSection struct {
	Label string
	Body  Block
}

func (LabeledSection) Kind() BlockKind { return BlockSection }

func (s LabeledSection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  BlockKind `json:"type"`
		Label string    `json:"label"`
		Body  Block     `json:"body"`
	}{BlockSection, s.Label, s.Body})
}

// Document is the parsed, sanitized representation of an answer.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// IsEmpty reports whether the document has no blocks.
func (d Document) IsEmpty() bool { return len(d.Blocks) == 0 }

// PlainText renders the document without markup. Paragraphs and sections are
// separated by blank lines and list items are prefixed with "• ".
func (d Document) PlainText() string {
	var b strings.Builder
	for i, block := range d.Blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writePlain(&b, block)
	}
	return b.String()
}

func writePlain(b *strings.Builder, block Block) {
	switch v := block.(type) {
	case Paragraph:
		writeRuns(b, v.Runs)
	case BulletList:
		for i, item := range v.Items {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("• ")
			writeRuns(b, item)
		}
	case LabeledSection:
		b.WriteString(v.Label)
		b.WriteString(":\n")
		if v.Body != nil {
			writePlain(b, v.Body)
		}
	}
}

func writeRuns(b *strings.Builder, runs []Run) {
	for _, r := range runs {
		if r.Kind == RunLineBreak {
			b.WriteString("\n")
			continue
		}
		b.WriteString(r.Text)
	}
}

func nonNilRuns(runs []Run) []Run {
	if runs == nil {
		return []Run{}
	}
	return runs
}
