package testing

import (
	"context"
	"sync"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
)

// MockQuoteSource is a mock implementation of domain.QuoteSource for testing
type MockQuoteSource struct {
	mu     sync.RWMutex
	prices map[string]float64
	err    error
	calls  []string
}

// NewMockQuoteSource creates a new mock quote source
func NewMockQuoteSource(prices map[string]float64) *MockQuoteSource {
	if prices == nil {
		prices = make(map[string]float64)
	}
	return &MockQuoteSource{prices: prices}
}

// SetError makes every lookup fail with err
func (m *MockQuoteSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetPrice returns the configured price; unknown tickers are quote failures.
func (m *MockQuoteSource) GetPrice(_ context.Context, ticker string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ticker)
	if m.err != nil {
		return 0, m.err
	}
	price, ok := m.prices[ticker]
	if !ok {
		return 0, domain.Errorf(domain.KindQuoteUnavailable, "mock.get_price", "no quote for %s", ticker)
	}
	return price, nil
}

// Calls returns the tickers looked up so far, in order
func (m *MockQuoteSource) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

// MockRatesSource is a mock implementation of domain.RatesSource for testing
type MockRatesSource struct {
	mu    sync.RWMutex
	pair  domain.RatePair
	err   error
	calls int
}

// NewMockRatesSource creates a new mock rates source
func NewMockRatesSource(pair domain.RatePair) *MockRatesSource {
	return &MockRatesSource{pair: pair}
}

// SetError makes GetRates fail with err
func (m *MockRatesSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetRates returns the configured pair
func (m *MockRatesSource) GetRates(context.Context) (domain.RatePair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.RatePair{}, m.err
	}
	return m.pair, nil
}

// Calls returns how many times GetRates was called
func (m *MockRatesSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
