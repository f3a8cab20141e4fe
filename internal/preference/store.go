// Package preference holds the display language, currency and exchange rate
// shared by every view of a dashboard session.
package preference

import (
	"slices"
	"sync"

	"crypto-analytics/internal/domain"
)

// Store is the Display Preference Store. Every transition replaces the whole
// state under one lock, so readers never see half of a combined toggle.
type Store struct {
	// notifyMu serializes transitions with their listener calls so listeners
	// observe states in transition order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     domain.Preference
	listeners []func(domain.Preference)
}

// NewStore starts a session with the given language and currency and no
// conversion applied (rate 1).
func NewStore(lang domain.Language, cur domain.Currency) *Store {
	state := domain.DefaultPreference()
	if lang != "" {
		state.Language = lang
	}
	if cur != "" {
		state.Currency = cur
	}
	return &Store{state: state}
}

func (s *Store) Snapshot() domain.Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive the new state after every transition.
// fn may read the store but must not trigger a transition itself.
func (s *Store) Subscribe(fn func(domain.Preference)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) ToggleLanguage() domain.Preference {
	return s.update(func(p *domain.Preference) {
		p.Language = p.Language.Toggle()
	})
}

func (s *Store) ToggleCurrency() domain.Preference {
	return s.update(func(p *domain.Preference) {
		p.Currency = p.Currency.Toggle()
		resetBaseRate(p)
	})
}

// ToggleBoth flips language and currency in a single transition.
func (s *Store) ToggleBoth() domain.Preference {
	return s.update(func(p *domain.Preference) {
		p.Language = p.Language.Toggle()
		p.Currency = p.Currency.Toggle()
		resetBaseRate(p)
	})
}

// resetBaseRate drops a rate fetched for another currency once the base
// currency is selected, since base amounts need no conversion.
func resetBaseRate(p *domain.Preference) {
	if p.Currency == domain.BaseCurrency {
		p.ExchangeRate = 1
	}
}

// SetExchangeRate overwrites the stored rate. Callers decide whether a fetched
// rate is good enough to apply.
func (s *Store) SetExchangeRate(rate float64) domain.Preference {
	return s.update(func(p *domain.Preference) {
		p.ExchangeRate = rate
	})
}

// SetExchangeRateFor applies rate only while cur is still the selected
// currency, reporting whether it was applied.
func (s *Store) SetExchangeRateFor(cur domain.Currency, rate float64) (domain.Preference, bool) {
	applied := false
	next := s.update(func(p *domain.Preference) {
		if p.Currency != cur {
			return
		}
		p.ExchangeRate = rate
		applied = true
	})
	return next, applied
}

func (s *Store) update(fn func(*domain.Preference)) domain.Preference {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := prev
	fn(&next)
	s.state = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if next == prev {
		return next
	}
	for _, l := range listeners {
		l(next)
	}
	return next
}
