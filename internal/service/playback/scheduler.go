package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/model/document"
)

// DefaultInterval is the paced reveal interval used when none is configured.
const DefaultInterval = 30 * time.Millisecond

// ModeKind selects how a document is revealed.
type ModeKind string

const (
	ModeInstant ModeKind = "instant"
	ModePaced   ModeKind = "paced"
)

// Mode is a playback mode. Interval only applies to paced playback.
type Mode struct {
	Kind     ModeKind
	Interval time.Duration
}

// Instant reveals the whole document in one step.
func Instant() Mode { return Mode{Kind: ModeInstant} }

// Paced reveals one unit per interval.
func Paced(interval time.Duration) Mode {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Mode{Kind: ModePaced, Interval: interval}
}

// ParseMode maps a configuration value to a Mode.
func ParseMode(raw string, interval time.Duration) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModePaced), "typing":
		return Paced(interval), nil
	case string(ModeInstant):
		return Instant(), nil
	default:
		return Mode{}, fmt.Errorf("unknown playback mode %q", raw)
	}
}

// Sink receives display units. Implementations must be comparable (pointer
// receivers) because the scheduler tracks the active playback per sink.
type Sink interface {
	Append(Unit) error
}

// DocumentSink is a Sink that can take a whole document at once. Instant
// playback prefers it over appending units one by one.
type DocumentSink interface {
	Sink
	AppendDocument(messageID string, doc document.Document) error
}

type playConfig struct {
	messageID  string
	onComplete func(State)
}

// Option customizes a single Play call.
type Option func(*playConfig)

// WithMessageID tags emitted units and the playback state with a message ID.
func WithMessageID(id string) Option {
	return func(c *playConfig) { c.messageID = id }
}

// WithOnComplete registers a callback fired once after the last unit of a
// playback that was not cancelled.
func WithOnComplete(fn func(State)) Option {
	return func(c *playConfig) { c.onComplete = fn }
}

// Scheduler reveals documents to sinks, keeping at most one active playback
// per sink.
type Scheduler struct {
	mu     sync.Mutex
	active map[Sink]*Handle
}

// NewScheduler returns an idle Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{active: make(map[Sink]*Handle)}
}

// Play starts revealing doc to sink and cancels any playback still active on
// the same sink. Instant playback has completed when Play returns; paced
// playback continues in the background.
func (s *Scheduler) Play(doc document.Document, sink Sink, mode Mode, opts ...Option) *Handle {
	cfg := playConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := newHandle(cfg.messageID)

	s.mu.Lock()
	if prev, ok := s.active[sink]; ok {
		prev.Cancel()
		log.Debug().Str("component", "playback").Str("message_id", prev.MessageID()).Msg("superseded active playback")
	}
	s.active[sink] = h
	s.mu.Unlock()

	units := Flatten(doc)
	if mode.Kind == ModeInstant {
		s.runInstant(h, doc, units, sink, cfg)
		return h
	}

	interval := mode.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	go s.runPaced(h, units, sink, interval, cfg)
	return h
}

// Active returns the playback currently running on sink, if any.
func (s *Scheduler) Active(sink Sink) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.active[sink]
	return h, ok
}

// CancelAll cancels every active playback.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.active))
	for sink, h := range s.active {
		handles = append(handles, h)
		delete(s.active, sink)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

func (s *Scheduler) runInstant(h *Handle, doc document.Document, units []Unit, sink Sink, cfg playConfig) {
	defer s.release(sink, h)

	if ds, ok := sink.(DocumentSink); ok {
		if err := h.emitDocument(ds, doc, len(units)); err != nil {
			h.fail(err)
			return
		}
		h.complete(cfg.onComplete)
		return
	}

	for _, u := range units {
		if err := h.emit(sink, u); err != nil {
			h.fail(err)
			return
		}
	}
	h.complete(cfg.onComplete)
}

func (s *Scheduler) runPaced(h *Handle, units []Unit, sink Sink, interval time.Duration, cfg playConfig) {
	defer s.release(sink, h)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i, u := range units {
		if i > 0 {
			select {
			case <-h.Done():
				return
			case <-ticker.C:
			}
		}
		if err := h.emit(sink, u); err != nil {
			h.fail(err)
			return
		}
	}
	h.complete(cfg.onComplete)
}

func (s *Scheduler) release(sink Sink, h *Handle) {
	s.mu.Lock()
	if s.active[sink] == h {
		delete(s.active, sink)
	}
	s.mu.Unlock()
}

// State is the transient state of one playback.
type State struct {
	MessageID string
	Position  int
	Cancelled bool
}

// ErrCancelled is reported by Handle.Err for cancelled playbacks.
var ErrCancelled = errors.New("playback cancelled")

// Handle controls one playback.
type Handle struct {
	mu        sync.Mutex
	state     State
	completed bool
	err       error

	done     chan struct{}
	doneOnce sync.Once
}

func newHandle(messageID string) *Handle {
	return &Handle{
		state: State{MessageID: messageID},
		done:  make(chan struct{}),
	}
}

// MessageID returns the message being played.
func (h *Handle) MessageID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.MessageID
}

// State returns a snapshot of the playback state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Completed reports whether every unit was delivered.
func (h *Handle) Completed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completed
}

// Cancel stops the playback. Once Cancel returns the handle emits nothing
// further. Cancelling a finished playback has no effect.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.completed || h.err != nil {
		h.mu.Unlock()
		return
	}
	h.state.Cancelled = true
	h.mu.Unlock()
	h.closeDone()
}

// Done is closed when the playback completes, is cancelled or fails.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the playback ends or ctx is done. It returns nil for a
// completed playback, ErrCancelled for a cancelled one and the sink error for
// a failed one.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
	}
	return h.Err()
}

// Err reports why a finished playback did not complete.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Cancelled {
		return ErrCancelled
	}
	return h.err
}

// emit delivers one unit while holding the handle lock, so a concurrent
// Cancel either happens before the cancelled check or waits for the unit.
func (h *Handle) emit(sink Sink, u Unit) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Cancelled {
		return nil
	}
	u.MessageID = h.state.MessageID
	u.Seq = h.state.Position
	if err := sink.Append(u); err != nil {
		return errors.Wrapf(err, "append unit %d", u.Seq)
	}
	h.state.Position++
	return nil
}

func (h *Handle) emitDocument(sink DocumentSink, doc document.Document, units int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Cancelled {
		return nil
	}
	if err := sink.AppendDocument(h.state.MessageID, doc); err != nil {
		return errors.Wrap(err, "append document")
	}
	h.state.Position = units
	return nil
}

func (h *Handle) complete(onComplete func(State)) {
	h.mu.Lock()
	if h.state.Cancelled || h.completed || h.err != nil {
		h.mu.Unlock()
		return
	}
	h.completed = true
	state := h.state
	h.mu.Unlock()

	h.closeDone()
	if onComplete != nil {
		onComplete(state)
	}
}

func (h *Handle) fail(err error) {
	h.mu.Lock()
	if h.state.Cancelled || h.completed {
		h.mu.Unlock()
		return
	}
	h.err = err
	h.mu.Unlock()

	log.Warn().Err(err).Str("component", "playback").Str("message_id", h.MessageID()).Msg("playback stopped by sink error")
	h.closeDone()
}

func (h *Handle) closeDone() {
	h.doneOnce.Do(func() { close(h.done) })
}
