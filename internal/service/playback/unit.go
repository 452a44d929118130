package playback

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zhouzirui/vetchat/internal/model/document"
)

// UnitKind identifies a display increment.
type UnitKind string

const (
	UnitBlockOpen  UnitKind = "block_open"
	UnitBlockClose UnitKind = "block_close"
	UnitItemOpen   UnitKind = "item_open"
	UnitItemClose  UnitKind = "item_close"
	UnitChar       UnitKind = "char"
	UnitLineBreak  UnitKind = "break"
)

// Unit is one atomic display increment. Char units carry a single user
// perceived character, or a whole HTML entity, so a sink appending Text
// verbatim never sees a split escape sequence.
type Unit struct {
	MessageID string             `json:"messageId"`
	Seq       int                `json:"seq"`
	Kind      UnitKind           `json:"kind"`
	Block     document.BlockKind `json:"block,omitempty"`
	Label     string             `json:"label,omitempty"`
	Text      string             `json:"text,omitempty"`
	Bold      bool               `json:"bold,omitempty"`
}

// Flatten turns a document into the ordered units revealed by paced playback.
func Flatten(doc document.Document) []Unit {
	var units []Unit
	for _, block := range doc.Blocks {
		units = flattenBlock(units, block)
	}
	return units
}

func flattenBlock(units []Unit, block document.Block) []Unit {
	switch v := block.(type) {
	case document.Paragraph:
		units = append(units, Unit{Kind: UnitBlockOpen, Block: document.BlockParagraph})
		units = flattenRuns(units, v.Runs)
		units = append(units, Unit{Kind: UnitBlockClose, Block: document.BlockParagraph})
	case document.BulletList:
		units = append(units, Unit{Kind: UnitBlockOpen, Block: document.BlockList})
		for _, item := range v.Items {
			units = append(units, Unit{Kind: UnitItemOpen})
			units = flattenRuns(units, item)
			units = append(units, Unit{Kind: UnitItemClose})
		}
		units = append(units, Unit{Kind: UnitBlockClose, Block: document.BlockList})
	case document.LabeledSection:
		units = append(units, Unit{Kind: UnitBlockOpen, Block: document.BlockSection, Label: v.Label})
		if v.Body != nil {
			units = flattenBlock(units, v.Body)
		}
		units = append(units, Unit{Kind: UnitBlockClose, Block: document.BlockSection})
	}
	return units
}

func flattenRuns(units []Unit, runs []document.Run) []Unit {
	for _, run := range runs {
		if run.Kind == document.RunLineBreak {
			units = append(units, Unit{Kind: UnitLineBreak})
			continue
		}
		bold := run.Kind == document.RunBold
		for _, ch := range splitChars(run.Text) {
			units = append(units, Unit{Kind: UnitChar, Text: ch, Bold: bold})
		}
	}
	return units
}

// splitChars splits escaped text into display characters: an entity such as
// "&amp;" is one character, and combining marks stay with their base rune.
func splitChars(s string) []string {
	var out []string
	for s != "" {
		if s[0] == '&' {
			if end := strings.IndexByte(s, ';'); end > 0 && end <= 10 {
				out = append(out, s[:end+1])
				s = s[end+1:]
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(s)
		for size < len(s) {
			next, n := utf8.DecodeRuneInString(s[size:])
			if !isExtender(next) {
				break
			}
			size += n
		}
		if len(out) > 0 && startsWithExtender(s) {
			out[len(out)-1] += s[:size]
		} else {
			out = append(out, s[:size])
		}
		s = s[size:]
	}
	return out
}

func isExtender(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me) ||
		r == '\u200c' || r == '\u200d' || unicode.Is(unicode.Variation_Selector, r)
}

func startsWithExtender(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isExtender(r)
}
