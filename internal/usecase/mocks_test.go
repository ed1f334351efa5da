package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/arbilens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockShoppingProvider is a mock implementation of domain.ShoppingProvider
type MockShoppingProvider struct {
	mu        sync.Mutex
	responses map[string]*domain.ShoppingResponse
	errs      map[string]error
	fallback  *domain.ShoppingResponse
	requests  []domain.SearchRequest
	calls     int32
	block     chan struct{}
	panicMsg  string
}

func NewMockShoppingProvider() *MockShoppingProvider {
	return &MockShoppingProvider{
		responses: make(map[string]*domain.ShoppingResponse),
		errs:      make(map[string]error),
	}
}

func (m *MockShoppingProvider) Search(ctx context.Context, request domain.SearchRequest) (*domain.ShoppingResponse, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.block != nil {
		<-m.block
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, request)

	if err, ok := m.errs[request.Query]; ok {
		return nil, err
	}
	if resp, ok := m.responses[request.Query]; ok {
		return resp, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return &domain.ShoppingResponse{}, nil
}

func (m *MockShoppingProvider) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

func (m *MockShoppingProvider) Requests() []domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SearchRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockVerifier is a mock implementation of domain.CredentialVerifier
type MockVerifier struct {
	err  error
	keys []string
}

func (m *MockVerifier) VerifyKey(ctx context.Context, apiKey string) error {
	m.keys = append(m.keys, apiKey)
	return m.err
}

// countingPacer records waits without sleeping
type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.err != nil {
		return p.err
	}
	return ctx.Err()
}

// recordingSink captures progress events
type recordingSink struct {
	mu       sync.Mutex
	progress []domain.Progress
	rows     []string
	done     []domain.Summary
}

func (s *recordingSink) Progress(p domain.Progress, row domain.CatalogRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, p)
	s.rows = append(s.rows, row.Identifier)
}

func (s *recordingSink) Done(summary domain.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = append(s.done, summary)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func shoppingItem(store, price string) domain.ShoppingResult {
	return domain.ShoppingResult{
		Source:         store,
		Title:          store + " listing",
		Link:           "https://" + store + ".example/item",
		ExtractedPrice: json.Number(price),
	}
}

func shoppingResponse(items ...domain.ShoppingResult) *domain.ShoppingResponse {
	return &domain.ShoppingResponse{ShoppingResults: items}
}

func catalogRow(id, title, code, listPrice, fee string) domain.CatalogRow {
	return domain.CatalogRow{
		Identifier:  id,
		Title:       title,
		Code:        code,
		ListPrice:   dec(listPrice),
		PlatformFee: dec(fee),
	}
}
