package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/model/document"
	model "github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/preference"
	"github.com/zhouzirui/vetchat/internal/service/locale"
	"github.com/zhouzirui/vetchat/internal/service/playback"
)

type fakeTransport struct {
	mu      sync.Mutex
	calls   []string
	answer  chat.Answer
	err     error
	release chan struct{}
	entered chan struct{}
}

func (f *fakeTransport) AskQuestion(ctx context.Context, query string) (chat.Answer, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.answer, f.err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type countingIndicator struct {
	mu    sync.Mutex
	shown int
	hid   int
}

func (c *countingIndicator) Show() { c.mu.Lock(); c.shown++; c.mu.Unlock() }
func (c *countingIndicator) Hide() { c.mu.Lock(); c.hid++; c.mu.Unlock() }

func (c *countingIndicator) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown, c.hid
}

type nullSink struct {
	mu    sync.Mutex
	units []playback.Unit
}

func (s *nullSink) Append(u playback.Unit) error {
	s.mu.Lock()
	s.units = append(s.units, u)
	s.mu.Unlock()
	return nil
}

func newOrchestrator(t *testing.T, transport Transport, indicator Indicator) *Orchestrator {
	t.Helper()
	catalog, err := model.DefaultCatalog("en")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mode = playback.Instant()
	return New(cfg, Deps{
		Transport: transport,
		Sink:      &nullSink{},
		Locale:    locale.New(preference.NewMemoryStore(nil), catalog),
		Indicator: indicator,
	})
}

func TestGreetingBypassesTransport(t *testing.T) {
	transport := &fakeTransport{}
	indicator := &countingIndicator{}
	o := newOrchestrator(t, transport, indicator)

	out := o.Submit(context.Background(), "hello")

	assert.Equal(t, StatusGreeted, out.Status)
	assert.Zero(t, transport.callCount())
	shown, hid := indicator.counts()
	assert.Zero(t, shown)
	assert.Zero(t, hid)

	messages := o.Log().Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, chat.SenderUser, messages[0].Sender)
	assert.Equal(t, chat.SenderBot, messages[1].Sender)
	assert.Equal(t, out.MessageID, messages[1].ID)
	assert.True(t, out.Playback.Completed())
}

func TestGreetingsCanBeDisabled(t *testing.T) {
	transport := &fakeTransport{answer: chat.Answer{Response: "Hi there"}}
	o := newOrchestrator(t, transport, nil)
	o.cfg.GreetingsEnabled = false

	out := o.Submit(context.Background(), "hello")
	assert.Equal(t, StatusAnswered, out.Status)
	assert.Equal(t, 1, transport.callCount())
}

func TestOverLengthQueryRejectedLocally(t *testing.T) {
	transport := &fakeTransport{}
	indicator := &countingIndicator{}
	o := newOrchestrator(t, transport, indicator)

	out := o.Submit(context.Background(), strings.Repeat("a", 501))

	assert.Equal(t, StatusRejected, out.Status)
	assert.Zero(t, transport.callCount())
	shown, _ := indicator.counts()
	assert.Zero(t, shown)

	messages := o.Log().Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, chat.SenderBot, messages[0].Sender)
	assert.True(t, messages[0].Advisory)
	assert.Contains(t, messages[0].RawText, "max 500 characters")
}

func TestEmptyQueryRejected(t *testing.T) {
	transport := &fakeTransport{}
	o := newOrchestrator(t, transport, nil)

	assert.Equal(t, StatusRejected, o.Submit(context.Background(), "   \n").Status)
	assert.Zero(t, transport.callCount())
}

func TestLengthCountsCharactersNotBytes(t *testing.T) {
	transport := &fakeTransport{answer: chat.Answer{Response: "ok"}}
	o := newOrchestrator(t, transport, nil)

	out := o.Submit(context.Background(), strings.Repeat("நா", 250))
	assert.Equal(t, StatusAnswered, out.Status)
}

func TestAnswerFormattedAndPlayed(t *testing.T) {
	transport := &fakeTransport{answer: chat.Answer{Response: "**Bloat**\n\nSymptoms:\n* swelling\n* pain"}}
	indicator := &countingIndicator{}
	o := newOrchestrator(t, transport, indicator)

	out := o.Submit(context.Background(), "what is bloat in cattle")

	require.Equal(t, StatusAnswered, out.Status)
	shown, hid := indicator.counts()
	assert.Equal(t, 1, shown)
	assert.Equal(t, 1, hid)

	messages := o.Log().Messages()
	require.Len(t, messages, 2)
	bot := messages[1]
	require.NotNil(t, bot.Document)
	require.Len(t, bot.Document.Blocks, 2)
	section, ok := bot.Document.Blocks[1].(document.LabeledSection)
	require.True(t, ok)
	assert.Equal(t, "Symptoms", section.Label)
	assert.False(t, bot.Advisory)

	require.NoError(t, out.Playback.Wait(context.Background()))
	assert.Equal(t, bot.ID, out.Playback.MessageID())
}

func TestBlankAnswerYieldsNoResultAdvisory(t *testing.T) {
	transport := &fakeTransport{answer: chat.Answer{Response: "  \n "}}
	indicator := &countingIndicator{}
	o := newOrchestrator(t, transport, indicator)

	out := o.Submit(context.Background(), "unknown disease")

	assert.Equal(t, StatusEmpty, out.Status)
	messages := o.Log().Messages()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1].RawText, "No relevant information found")
	_, hid := indicator.counts()
	assert.Equal(t, 1, hid)
}

func TestTransportFailureYieldsSingleAdvisory(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	indicator := &countingIndicator{}
	o := newOrchestrator(t, transport, indicator)

	out := o.Submit(context.Background(), "what is mastitis")

	assert.Equal(t, StatusFailed, out.Status)
	messages := o.Log().Messages()
	require.Len(t, messages, 2)
	bots := 0
	for _, m := range messages {
		if m.Sender == chat.SenderBot {
			bots++
			assert.Equal(t, "❌ Error: Unable to fetch response. Please try again later.", m.RawText)
		}
	}
	assert.Equal(t, 1, bots)
	shown, hid := indicator.counts()
	assert.Equal(t, 1, shown)
	assert.Equal(t, 1, hid)
	assert.False(t, o.Pending())
}

func TestBusyWhilePending(t *testing.T) {
	transport := &fakeTransport{
		answer:  chat.Answer{Response: "answer"},
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	o := newOrchestrator(t, transport, nil)

	first := make(chan Outcome, 1)
	go func() { first <- o.Submit(context.Background(), "first question") }()

	select {
	case <-transport.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("transport was not called")
	}
	require.True(t, o.Pending())

	second := o.Submit(context.Background(), "second question")
	assert.Equal(t, StatusBusy, second.Status)
	assert.Empty(t, second.MessageID)
	assert.Nil(t, second.Playback)

	close(transport.release)
	out := <-first
	assert.Equal(t, StatusAnswered, out.Status)

	users := 0
	for _, m := range o.Log().Messages() {
		if m.Sender == chat.SenderUser {
			users++
			assert.Equal(t, "first question", m.RawText)
		}
	}
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, transport.callCount())
	assert.False(t, o.Pending())
}

func TestTamilGreetingAndFallbackAdvisory(t *testing.T) {
	transport := &fakeTransport{err: errors.New("timeout")}
	o := newOrchestrator(t, transport, nil)
	require.NoError(t, o.Locale().SetLanguage("ta"))

	assert.Equal(t, StatusGreeted, o.Submit(context.Background(), "வணக்கம்").Status)

	out := o.Submit(context.Background(), "கால்நடை")
	assert.Equal(t, StatusFailed, out.Status)
	last := o.Log().Messages()[o.Log().Len()-1]
	assert.Contains(t, last.RawText, "Unable to fetch response")
}

func TestNewReplySupersedesPlayback(t *testing.T) {
	transport := &fakeTransport{answer: chat.Answer{Response: strings.Repeat("long answer ", 50)}}
	catalog, err := model.DefaultCatalog("en")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mode = playback.Paced(5 * time.Millisecond)
	o := New(cfg, Deps{
		Transport: transport,
		Sink:      &nullSink{},
		Locale:    locale.New(nil, catalog),
	})

	first := o.Submit(context.Background(), "first")
	second := o.Submit(context.Background(), "second")

	assert.True(t, first.Playback.State().Cancelled)
	assert.ErrorIs(t, first.Playback.Wait(context.Background()), playback.ErrCancelled)
	o.Cancel()
	assert.True(t, second.Playback.State().Cancelled)
}
