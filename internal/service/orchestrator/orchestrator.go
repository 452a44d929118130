// Package orchestrator turns a user query into conversation entries: it
// validates input, keeps a single request in flight, maps transport outcomes
// to bot messages and starts their playback.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/analysis/format"
	"github.com/zhouzirui/vetchat/internal/model/chat"
	model "github.com/zhouzirui/vetchat/internal/model/locale"
	chatsvc "github.com/zhouzirui/vetchat/internal/service/chat"
	"github.com/zhouzirui/vetchat/internal/service/locale"
	"github.com/zhouzirui/vetchat/internal/service/playback"
)

const DefaultMaxQueryLength = 500

// Transport asks the remote answering service.
type Transport interface {
	AskQuestion(ctx context.Context, query string) (chat.Answer, error)
}

// Indicator shows that a request is in flight.
type Indicator interface {
	Show()
	Hide()
}

type Status string

const (
	StatusRejected Status = "rejected"
	StatusBusy     Status = "busy"
	StatusGreeted  Status = "greeted"
	StatusAnswered Status = "answered"
	StatusEmpty    Status = "empty"
	StatusFailed   Status = "failed"
)

// Outcome reports what a submission did. MessageID and Playback refer to the
// bot message appended for it and are empty for StatusBusy.
type Outcome struct {
	Status    Status
	MessageID string
	Playback  *playback.Handle
}

type Config struct {
	MaxQueryLength   int
	GreetingsEnabled bool
	Mode             playback.Mode
}

func DefaultConfig() Config {
	return Config{
		MaxQueryLength:   DefaultMaxQueryLength,
		GreetingsEnabled: true,
		Mode:             playback.Paced(playback.DefaultInterval),
	}
}

// Deps are the collaborators of one session. Transport, Sink and Locale are
// required; the rest default to fresh instances or no-ops.
type Deps struct {
	Transport Transport
	Sink      playback.Sink
	Locale    *locale.State
	Indicator Indicator
	Log       *chatsvc.Log
	Scheduler *playback.Scheduler
}

type Orchestrator struct {
	cfg       Config
	transport Transport
	sink      playback.Sink
	locale    *locale.State
	indicator Indicator
	log       *chatsvc.Log
	scheduler *playback.Scheduler

	mu      sync.Mutex
	pending bool
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = DefaultMaxQueryLength
	}
	if deps.Indicator == nil {
		deps.Indicator = noopIndicator{}
	}
	if deps.Log == nil {
		deps.Log = chatsvc.NewLog()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = playback.NewScheduler()
	}

	return &Orchestrator{
		cfg:       cfg,
		transport: deps.Transport,
		sink:      deps.Sink,
		locale:    deps.Locale,
		indicator: deps.Indicator,
		log:       deps.Log,
		scheduler: deps.Scheduler,
	}
}

// Log returns the conversation this orchestrator appends to.
func (o *Orchestrator) Log() *chatsvc.Log { return o.log }

// Locale returns the session language state.
func (o *Orchestrator) Locale() *locale.State { return o.locale }

// Pending reports whether a transport call is outstanding.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Submit handles one user query. Failures are reported through the returned
// status and an advisory bot message, never as an error.
func (o *Orchestrator) Submit(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" || utf8.RuneCountInString(query) > o.cfg.MaxQueryLength {
		text := fmt.Sprintf(o.advisory(model.AdvisoryInvalidQuery), o.cfg.MaxQueryLength)
		return o.reply(StatusRejected, text, true)
	}

	if !o.acquire() {
		log.Debug().Str("component", "orchestrator").Msg("submission rejected while busy")
		return Outcome{Status: StatusBusy}
	}
	released := false
	release := func() {
		if !released {
			released = true
			o.release()
		}
	}
	defer release()

	if o.cfg.GreetingsEnabled {
		if greeting, ok := o.locale.Catalog().Greeting(o.locale.Current(), query); ok {
			o.log.AppendUser(query)
			release()
			return o.reply(StatusGreeted, greeting, false)
		}
	}

	o.log.AppendUser(query)
	status, text, advisory := o.ask(ctx, query)
	release()
	return o.reply(status, text, advisory)
}

func (o *Orchestrator) ask(ctx context.Context, query string) (Status, string, bool) {
	o.indicator.Show()
	defer o.indicator.Hide()

	answer, err := o.transport.AskQuestion(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("component", "orchestrator").Msg("answer request failed")
		return StatusFailed, o.advisory(model.AdvisoryTransportError), true
	}
	if strings.TrimSpace(answer.Response) == "" {
		return StatusEmpty, o.advisory(model.AdvisoryNoResult), true
	}
	return StatusAnswered, answer.Response, false
}

// reply formats text with the current language's labels, appends it as a bot
// message and starts playing it.
func (o *Orchestrator) reply(status Status, text string, advisory bool) Outcome {
	doc := format.New(o.locale.Labels()...).Format(text)
	msg := o.log.AppendBot(text, doc, advisory)

	handle := o.scheduler.Play(doc, o.sink, o.cfg.Mode, playback.WithMessageID(msg.ID))
	return Outcome{Status: status, MessageID: msg.ID, Playback: handle}
}

// Cancel stops the playback currently running on the session sink.
func (o *Orchestrator) Cancel() {
	if h, ok := o.scheduler.Active(o.sink); ok {
		h.Cancel()
	}
}

func (o *Orchestrator) advisory(key model.Advisory) string {
	return o.locale.Catalog().Advisory(o.locale.Current(), key)
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending {
		return false
	}
	o.pending = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.pending = false
	o.mu.Unlock()
}

type noopIndicator struct{}

func (noopIndicator) Show() {}
func (noopIndicator) Hide() {}
