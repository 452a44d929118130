// Package answer is the in-process answering service: keyword retrieval over
// the knowledge base, optionally rewritten by a language model.
package answer

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/analysis/retrieval"
	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/model/knowledge"
)

const DefaultTopK = 3

var ErrInvalidQuery = errors.New("invalid query")

// Generator rewrites retrieved entries into an answer.
type Generator interface {
	Generate(ctx context.Context, query string, entries []knowledge.Entry) (string, error)
}

type Service struct {
	store     knowledge.Store
	topK      int
	maxLen    int
	generator Generator
}

// NewService builds the answering service. generator may be nil, in which
// case entries are rendered directly.
func NewService(store knowledge.Store, topK, maxQueryLength int, generator Generator) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{store: store, topK: topK, maxLen: maxQueryLength, generator: generator}
}

// AskQuestion answers query. An empty Response means nothing relevant was
// found.
func (s *Service) AskQuestion(ctx context.Context, query string) (chat.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" || (s.maxLen > 0 && utf8.RuneCountInString(query) > s.maxLen) {
		return chat.Answer{}, ErrInvalidQuery
	}

	matches := retrieval.Rank(query, s.store.List(), s.topK)
	if len(matches) == 0 {
		log.Debug().Str("component", "answer").Str("query", query).Msg("no knowledge match")
		return chat.Answer{}, nil
	}

	entries := make([]knowledge.Entry, len(matches))
	for i, m := range matches {
		entries[i] = m.Entry
	}

	if s.generator != nil {
		text, err := s.generator.Generate(ctx, query, entries)
		if err == nil && strings.TrimSpace(text) != "" {
			return chat.Answer{Response: text}, nil
		}
		if ctx.Err() != nil {
			return chat.Answer{}, errors.Wrap(ctx.Err(), "answer cancelled")
		}
		log.Warn().Err(err).Str("component", "answer").Msg("generator failed, rendering entries directly")
	}

	return chat.Answer{Response: knowledge.Render(entries)}, nil
}
