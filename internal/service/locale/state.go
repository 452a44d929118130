// Package locale tracks the language of one chat session.
package locale

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	model "github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/preference"
)

var ErrUnknownLanguage = errors.New("unknown language")

// State is the current language of a session. The initial value is read once
// from the preference store; later changes are written back to it.
type State struct {
	mu      sync.RWMutex
	current string
	store   preference.Store
	catalog *model.Catalog
}

// New resolves the starting language: the stored preference when the catalog
// knows it, otherwise the catalog fallback.
func New(store preference.Store, catalog *model.Catalog) *State {
	if store == nil {
		store = preference.NewMemoryStore(nil)
	}

	current := catalog.Fallback()
	if stored, ok := store.Get(preference.KeyLanguage); ok {
		if catalog.Has(stored) {
			current = stored
		} else {
			log.Warn().Str("component", "locale").Str("language", stored).Msg("ignoring unknown stored language")
		}
	}

	return &State{current: current, store: store, catalog: catalog}
}

// Current returns the active language code.
func (s *State) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetLanguage switches and persists the language. Repeating the current
// value writes the preference again and changes nothing else.
func (s *State) SetLanguage(code string) error {
	if !s.catalog.Has(code) {
		return errors.Wrapf(ErrUnknownLanguage, "language %q", code)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(preference.KeyLanguage, code); err != nil {
		return errors.Wrap(err, "persist language")
	}
	s.current = code
	return nil
}

// Labels returns the section labels the formatter recognizes for the current
// language.
func (s *State) Labels() []string {
	return s.catalog.SectionLabels(s.Current())
}

// UI returns the interface text table for the current language.
func (s *State) UI() map[string]string {
	return s.catalog.UI(s.Current())
}

// Catalog exposes the catalog backing the state.
func (s *State) Catalog() *model.Catalog {
	return s.catalog
}
