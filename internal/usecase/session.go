package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/arbilens/backend/internal/domain"
)

type rowOutcome struct {
	status  domain.FetchStatus
	message string
}

// Session is one research batch: its rows, the selections made on them and
// the batch progress. Costs are recomputed on read, so a selection change is
// reflected by the next Result or Results call.
type Session struct {
	ID        string
	CreatedAt time.Time

	calculator *Calculator
	selector   *Selector

	mu       sync.RWMutex
	rows     []domain.CatalogRow
	index    map[string]int
	outcomes []rowOutcome // parallel to rows
	progress domain.Progress
	summary  domain.Summary
}

func newSession(id string, calculator *Calculator, total int) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		calculator: calculator,
		selector:   NewSelector(),
		rows:       make([]domain.CatalogRow, 0, total),
		index:      make(map[string]int, total),
		outcomes:   make([]rowOutcome, 0, total),
		progress:   domain.Progress{Total: total},
		summary:    domain.Summary{SessionID: id, Status: domain.BatchRunning, Total: total},
	}
}

// record stores the lookup outcome for a processed row and applies the default selection
func (s *Session) record(row domain.CatalogRow, result domain.FetchResult, message string) domain.RowResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.index[row.Identifier]; !seen {
		s.index[row.Identifier] = len(s.rows)
	}
	s.rows = append(s.rows, row)
	s.outcomes = append(s.outcomes, rowOutcome{status: result.Status, message: message})
	s.selector.Assign(row.Identifier, result.Offers)

	return s.resultLocked(len(s.rows) - 1)
}

func (s *Session) setProgress(p domain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

func (s *Session) finish(summary domain.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// Progress returns the last reported batch position
func (s *Session) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Summary returns the batch summary; Status is running until the batch ends
func (s *Session) Summary() domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Results returns one result per processed row, in catalog order
func (s *Session) Results() []domain.RowResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.RowResult, 0, len(s.rows))
	for i := range s.rows {
		results = append(results, s.resultLocked(i))
	}
	return results
}

// ProfitableResults returns only rows with strictly positive net profit
func (s *Session) ProfitableResults() []domain.RowResult {
	all := s.Results()
	profitable := make([]domain.RowResult, 0, len(all))
	for _, r := range all {
		if r.Profitable {
			profitable = append(profitable, r)
		}
	}
	return profitable
}

// Result recomputes the result for one identifier, using its first occurrence
func (s *Session) Result(identifier string) (domain.RowResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[identifier]
	if !ok {
		return domain.RowResult{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, identifier)
	}
	return s.resultLocked(i), nil
}

// Select overrides the chosen offer for a row and returns its recomputed result.
// An out-of-range index leaves the previous selection in place.
func (s *Session) Select(identifier string, index int) (domain.RowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[identifier]
	if !ok {
		return domain.RowResult{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, identifier)
	}
	if _, err := s.selector.Select(identifier, index); err != nil {
		return s.resultLocked(i), err
	}
	return s.resultLocked(i), nil
}

func (s *Session) resultLocked(i int) domain.RowResult {
	row := s.rows[i]
	selection, chosen, _ := s.selector.Selected(row.Identifier)
	offers, _ := s.selector.Offers(row.Identifier)
	costs := s.calculator.ComputeForOffer(row, chosen)
	outcome := s.outcomes[i]

	return domain.RowResult{
		Row:        row,
		Offers:     offers,
		Selection:  selection,
		Chosen:     chosen,
		Costs:      costs,
		Profitable: costs.Profitable(),
		Status:     outcome.status,
		Message:    outcome.message,
	}
}

// sessionStore keeps the most recent sessions, evicting the oldest past max
type sessionStore struct {
	mu    sync.RWMutex
	max   int
	byID  map[string]*Session
	order []string
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 32
	}
	return &sessionStore{
		max:  max,
		byID: make(map[string]*Session),
	}
}

func (st *sessionStore) add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.byID[s.ID] = s
	st.order = append(st.order, s.ID)
	for len(st.order) > st.max {
		oldest := st.order[0]
		st.order = st.order[1:]
		delete(st.byID, oldest)
	}
}

func (st *sessionStore) get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.byID[id]
	return s, ok
}
