package format

import (
	"html"
	"strings"
	"unicode"
)

// sanitize is the only place leaf text is produced from input. Control
// characters are dropped, tabs become spaces, invalid UTF-8 bytes become
// U+FFFD and HTML metacharacters are escaped so renderers can emit leaves
// verbatim.
func sanitize(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		case unicode.Is(unicode.Cf, r) && r != '\u200c' && r != '\u200d':
			// Format characters such as bidi overrides; the zero width
			// (non-)joiners are kept because emoji and Tamil text rely on them.
			return -1
		}
		return r
	}, s)
	return html.EscapeString(cleaned)
}
