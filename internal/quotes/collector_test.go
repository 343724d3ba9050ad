package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuoteSource is a mock quote source for testing
type MockQuoteSource struct {
	mock.Mock
}

func (m *MockQuoteSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(float64), args.Error(1)
}

func TestDistinctTickers(t *testing.T) {
	got := DistinctTickers([]string{"AAPL", "KO", "AAPL", "", "  ", "MELI", "KO"})
	assert.Equal(t, []string{"AAPL", "KO", "MELI"}, got)
}

func TestCollect_OneLookupPerDistinctTicker(t *testing.T) {
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, "AAPL").Return(150.0, nil).Once()
	source.On("GetPrice", mock.Anything, "KO").Return(20.5, nil).Once()

	c := NewCollector(source, 0, zerolog.Nop())

	var seen []string
	res, err := c.Collect(context.Background(), []string{"AAPL", "KO", "AAPL", "AAPL"}, func(done, total int, ticker string) {
		assert.Equal(t, 2, total)
		seen = append(seen, ticker)
	})

	require.NoError(t, err)
	assert.Equal(t, domain.QuoteMap{"AAPL": 150.0, "KO": 20.5}, res.Quotes)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"AAPL", "KO"}, seen)
	source.AssertExpectations(t)
}

func TestCollect_ContinuesAfterFailureButReportsIt(t *testing.T) {
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, "BAD").Return(0.0, errors.New("404 not found")).Once()
	source.On("GetPrice", mock.Anything, "KO").Return(20.5, nil).Once()

	c := NewCollector(source, 0, zerolog.Nop())
	res, err := c.Collect(context.Background(), []string{"BAD", "KO"}, nil)

	require.Error(t, err)
	assert.Equal(t, domain.KindQuoteUnavailable, domain.KindOf(err))
	assert.Contains(t, err.Error(), "BAD")
	assert.Equal(t, []string{"BAD"}, res.Failed)
	assert.Equal(t, 20.5, res.Quotes["KO"])
	source.AssertExpectations(t)
}

func TestCollect_ThrottlesBetweenLookups(t *testing.T) {
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, mock.Anything).Return(1.0, nil)

	delay := 30 * time.Millisecond
	c := NewCollector(source, delay, zerolog.Nop())

	start := time.Now()
	_, err := c.Collect(context.Background(), []string{"A", "B", "C"}, nil)
	require.NoError(t, err)

	// Three lookups need at least two full delays between them.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay-5*time.Millisecond)
	source.AssertNumberOfCalls(t, "GetPrice", 3)
}

func TestCollect_PausesAfterSlowSuccessfulLookup(t *testing.T) {
	slow := 40 * time.Millisecond
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(slow) }).
		Return(1.0, nil)

	delay := 30 * time.Millisecond
	c := NewCollector(source, delay, zerolog.Nop())

	start := time.Now()
	_, err := c.Collect(context.Background(), []string{"A", "B"}, nil)
	require.NoError(t, err)

	// Spacing only the starts would finish after 2*slow; the pause adds a full delay.
	assert.GreaterOrEqual(t, time.Since(start), 2*slow+delay-5*time.Millisecond)
}

func TestCollect_NoPauseAfterLastLookup(t *testing.T) {
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, "AAPL").Return(150.0, nil).Once()

	c := NewCollector(source, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Collect(ctx, []string{"AAPL"}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteMap{"AAPL": 150.0}, res.Quotes)
}

func TestCollect_CancelDuringPauseAborts(t *testing.T) {
	source := new(MockQuoteSource)
	source.On("GetPrice", mock.Anything, "AAPL").Return(150.0, nil).Once()

	c := NewCollector(source, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := c.Collect(ctx, []string{"AAPL", "KO"}, nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindQuoteUnavailable, domain.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.QuoteMap{"AAPL": 150.0}, res.Quotes)
	source.AssertNotCalled(t, "GetPrice", mock.Anything, "KO")
}

func TestCollect_CancelledContextAborts(t *testing.T) {
	source := new(MockQuoteSource)
	c := NewCollector(source, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, []string{"AAPL"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	source.AssertNotCalled(t, "GetPrice", mock.Anything, mock.Anything)
}

func TestCollect_EmptyLedger(t *testing.T) {
	c := NewCollector(new(MockQuoteSource), DefaultDelay, zerolog.Nop())
	res, err := c.Collect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Quotes)
}
