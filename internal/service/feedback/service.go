// Package feedback records free-text feedback left by chat users.
package feedback

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/model/chat"
)

const DefaultMaxLength = 1000

const (
	MessageThanks   = "Thank you for your feedback!"
	MessageEmpty    = "Please enter your feedback."
	MessageTooLong  = "Feedback is too long."
	MessageInternal = "Oops! Something went wrong. Please try again later."
)

var (
	ErrEmptyFeedback   = errors.New("feedback is empty")
	ErrFeedbackTooLong = errors.New("feedback is too long")
)

// Entry is one stored feedback message.
type Entry struct {
	Text      string
	CreatedAt time.Time
}

// Store persists feedback entries.
type Store interface {
	Save(ctx context.Context, entry Entry) error
	Close() error
}

type Service struct {
	store     Store
	maxLength int
	now       func() time.Time
}

func NewService(store Store, maxLength int) *Service {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Service{store: store, maxLength: maxLength, now: time.Now}
}

// Submit validates and stores text. Validation failures return
// ErrEmptyFeedback or ErrFeedbackTooLong together with the user-facing result.
func (s *Service) Submit(ctx context.Context, text string) (chat.FeedbackResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.FeedbackResult{Message: MessageEmpty}, ErrEmptyFeedback
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return chat.FeedbackResult{Message: MessageTooLong}, ErrFeedbackTooLong
	}

	if err := s.store.Save(ctx, Entry{Text: text, CreatedAt: s.now()}); err != nil {
		log.Error().Err(err).Str("component", "feedback").Msg("failed to save feedback")
		return chat.FeedbackResult{Message: MessageInternal}, errors.Wrap(err, "save feedback")
	}
	return chat.FeedbackResult{Success: true, Message: MessageThanks}, nil
}

// SubmitFeedback adapts Submit to the transport shape used by clients that
// talk to the service in-process.
func (s *Service) SubmitFeedback(ctx context.Context, text string) (chat.FeedbackResult, error) {
	result, err := s.Submit(ctx, text)
	if errors.Is(err, ErrEmptyFeedback) || errors.Is(err, ErrFeedbackTooLong) {
		return result, nil
	}
	return result, err
}
