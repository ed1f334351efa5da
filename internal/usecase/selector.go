package usecase

import (
	"fmt"
	"sync"

	"github.com/arbilens/backend/internal/domain"
)

// Selector holds the candidate offers and chosen index per catalog identifier.
// The default choice is the cheapest offer; an operator may override it.
type Selector struct {
	mu     sync.RWMutex
	sets   map[string]domain.OfferSet
	chosen map[string]int
}

// NewSelector creates an empty selector
func NewSelector() *Selector {
	return &Selector{
		sets:   make(map[string]domain.OfferSet),
		chosen: make(map[string]int),
	}
}

// Assign stores the offer set for an identifier and resets the choice to the
// cheapest offer, or to none when the set is empty.
func (s *Selector) Assign(identifier string, offers domain.OfferSet) domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[identifier] = offers
	index := 0
	if len(offers) == 0 {
		index = domain.NoSelection
	}
	s.chosen[identifier] = index

	return domain.Selection{Identifier: identifier, Index: index}
}

// Select sets the chosen index. It fails without changing anything unless 0 <= index < len(offers).
func (s *Selector) Select(identifier string, index int) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offers, ok := s.sets[identifier]
	if !ok {
		return domain.Selection{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, identifier)
	}
	if index < 0 || index >= len(offers) {
		return domain.Selection{Identifier: identifier, Index: s.chosen[identifier]},
			fmt.Errorf("%w: index %d out of range for %s (%d offers)", domain.ErrInvalidSelection, index, identifier, len(offers))
	}

	s.chosen[identifier] = index
	return domain.Selection{Identifier: identifier, Index: index}, nil
}

// Selected returns the current selection and the chosen offer, if any
func (s *Selector) Selected(identifier string) (domain.Selection, *domain.Offer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers, ok := s.sets[identifier]
	if !ok {
		return domain.Selection{}, nil, false
	}

	index := s.chosen[identifier]
	selection := domain.Selection{Identifier: identifier, Index: index}
	offer, found := offers.At(index)
	if !found {
		return selection, nil, true
	}
	return selection, &offer, true
}

// Offers returns the candidate set for an identifier
func (s *Selector) Offers(identifier string) (domain.OfferSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers, ok := s.sets[identifier]
	return offers, ok
}
