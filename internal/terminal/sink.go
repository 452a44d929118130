// Package terminal renders played back answers on a text terminal.
package terminal

import (
	"html"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/vetchat/internal/model/document"
	"github.com/zhouzirui/vetchat/internal/service/playback"
)

const bullet = "• "

// Styles used by the sink. Zero values render plain text.
type Styles struct {
	Prefix  lipgloss.Style
	Bold    lipgloss.Style
	Label   lipgloss.Style
	Loading lipgloss.Style
}

// DefaultStyles binds the default palette to the renderer of w so colour
// support is detected on the real output.
func DefaultStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Prefix:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		Bold:    r.NewStyle().Bold(true),
		Label:   r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("62")),
		Loading: r.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888")),
	}
}

// Sink writes playback units to w. It is also the loading indicator of the
// terminal chat.
type Sink struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	prefix  string
	loading string

	current    string
	blocks     int
	depth      int
	lineOpen   bool
	showingNow bool
}

// NewSink returns a sink writing to w. prefix is printed before every bot
// message.
func NewSink(w io.Writer, prefix, loading string) *Sink {
	return &Sink{
		out:     w,
		styles:  DefaultStyles(w),
		prefix:  prefix,
		loading: loading,
	}
}

// SetLoadingText replaces the text shown while waiting for an answer.
func (s *Sink) SetLoadingText(text string) {
	s.mu.Lock()
	s.loading = text
	s.mu.Unlock()
}

func (s *Sink) Append(u playback.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(u)
}

func (s *Sink) AppendDocument(messageID string, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range playback.Flatten(doc) {
		u.MessageID = messageID
		if err := s.appendLocked(u); err != nil {
			return err
		}
	}
	return nil
}

// Finish terminates the current message line.
func (s *Sink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" && s.lineOpen {
		_, _ = io.WriteString(s.out, "\n")
		s.lineOpen = false
	}
}

func (s *Sink) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading == "" {
		return
	}
	_, _ = io.WriteString(s.out, s.styles.Loading.Render(s.loading))
	s.showingNow = true
}

func (s *Sink) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLoading()
}

func (s *Sink) clearLoading() {
	if !s.showingNow {
		return
	}
	width := lipgloss.Width(s.loading)
	_, _ = io.WriteString(s.out, "\r"+strings.Repeat(" ", width)+"\r")
	s.showingNow = false
}

func (s *Sink) appendLocked(u playback.Unit) error {
	s.clearLoading()

	var b strings.Builder
	if u.MessageID != s.current {
		if s.lineOpen {
			b.WriteString("\n")
		}
		s.current = u.MessageID
		s.blocks = 0
		s.depth = 0
		b.WriteString(s.styles.Prefix.Render(s.prefix))
		s.lineOpen = true
	}

	switch u.Kind {
	case playback.UnitBlockOpen:
		if s.depth == 0 {
			if s.blocks > 0 {
				b.WriteString("\n")
			}
			s.blocks++
		}
		s.depth++
		if u.Block == document.BlockSection && u.Label != "" {
			b.WriteString(s.styles.Label.Render(u.Label) + "\n")
		}
	case playback.UnitItemOpen:
		b.WriteString(bullet)
	case playback.UnitChar:
		text := html.UnescapeString(u.Text)
		if u.Bold {
			text = s.styles.Bold.Render(text)
		}
		b.WriteString(text)
		s.lineOpen = true
	case playback.UnitLineBreak, playback.UnitItemClose:
		b.WriteString("\n")
		s.lineOpen = false
	case playback.UnitBlockClose:
		if s.depth > 0 {
			s.depth--
		}
		if u.Block == document.BlockParagraph {
			b.WriteString("\n")
			s.lineOpen = false
		}
	}

	_, err := io.WriteString(s.out, b.String())
	return err
}
