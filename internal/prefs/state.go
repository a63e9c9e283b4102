package prefs

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"stays/internal/domain"
)

// State is the currency preference owned by the composition root: one value
// over a pluggable backing store, with change notification for reactive
// consumers. Writes replace the whole value, never parts of it.
type State struct {
	store domain.PreferenceStore

	mu       sync.RWMutex
	currency domain.Currency
	subs     []func(domain.Currency)
}

func New(store domain.PreferenceStore) *State {
	return &State{store: store, currency: domain.DefaultCurrency}
}

// Init loads the persisted currency. Nothing stored, or an unsupported
// stored code, falls back to the default.
func (s *State) Init(ctx context.Context) error {
	v, ok, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load currency preference: %w", err)
	}
	if !ok {
		return nil
	}
	c, err := domain.ParseCurrency(v)
	if err != nil {
		log.Warn().Str("stored", v).Msg("ignoring unsupported persisted currency")
		return nil
	}
	s.mu.Lock()
	s.currency = c
	s.mu.Unlock()
	return nil
}

func (s *State) Currency() domain.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency validates, persists, then notifies subscribers. Subscribers
// run outside the lock so they may call back into State.
func (s *State) SetCurrency(ctx context.Context, c domain.Currency) error {
	if !c.Valid() {
		return fmt.Errorf("unsupported currency %q", c)
	}
	if err := s.store.Save(ctx, string(c)); err != nil {
		return fmt.Errorf("persist currency preference: %w", err)
	}

	s.mu.Lock()
	s.currency = c
	subs := append(([]func(domain.Currency))(nil), s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
	return nil
}

// Subscribe registers fn to run after every successful currency change.
func (s *State) Subscribe(fn func(domain.Currency)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
