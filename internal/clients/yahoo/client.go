// Package yahoo provides BYMA quotes through Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// DefaultSuffix is the Yahoo suffix for Buenos Aires listings.
const DefaultSuffix = ".BA"

const op = "yahoo.get_price"

// tickerData is the part of a Yahoo ticker the client reads.
type tickerData interface {
	RegularMarketPrice() (float64, error)
	LastPrice() (float64, error)
	Close()
}

// openFunc opens a ticker handle for a Yahoo symbol.
type openFunc func(symbol string) (tickerData, error)

// Client implements domain.QuoteSource using go-yfinance
type Client struct {
	suffix  string
	timeout time.Duration
	open    openFunc
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance quote client. A positive timeout
// bounds each lookup.
func NewClient(suffix string, timeout time.Duration, log zerolog.Logger) *Client {
	c := newClient(suffix, openYFinance, log)
	c.timeout = timeout
	return c
}

func newClient(suffix string, open openFunc, log zerolog.Logger) *Client {
	return &Client{
		suffix: suffix,
		open:   open,
		log:    log.With().Str("client", "yahoo").Logger(),
	}
}

// Symbol converts a broker ticker to its Yahoo local-market symbol.
func (c *Client) Symbol(tickerSymbol string) string {
	s := strings.ToUpper(strings.TrimSpace(tickerSymbol))
	if c.suffix == "" || strings.HasSuffix(s, strings.ToUpper(c.suffix)) {
		return s
	}
	return s + c.suffix
}

// GetPrice returns the regular market price, falling back to the last traded price.
func (c *Client) GetPrice(ctx context.Context, tickerSymbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewError(domain.KindQuoteUnavailable, op, tickerSymbol, err)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	symbol := c.Symbol(tickerSymbol)

	// go-yfinance takes no context, so the lookup runs aside and is abandoned on timeout.
	type outcome struct {
		price float64
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		price, err := c.lookup(symbol)
		done <- outcome{price, err}
	}()

	select {
	case <-ctx.Done():
		return 0, domain.NewError(domain.KindQuoteUnavailable, op, symbol, ctx.Err())
	case o := <-done:
		return o.price, o.err
	}
}

func (c *Client) lookup(symbol string) (float64, error) {
	t, err := c.open(symbol)
	if err != nil {
		return 0, domain.NewError(domain.KindQuoteUnavailable, op, symbol,
			fmt.Errorf("failed to create ticker: %w", err))
	}
	defer t.Close()

	price, err := t.RegularMarketPrice()
	if err == nil && validPrice(price) {
		return price, nil
	}
	if err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("Regular market price unavailable, trying last price")
	}

	price, err = t.LastPrice()
	if err != nil {
		return 0, domain.NewError(domain.KindQuoteUnavailable, op, symbol, err)
	}
	if !validPrice(price) {
		return 0, domain.NewError(domain.KindQuoteUnavailable, op, symbol,
			fmt.Errorf("no price in quote"))
	}

	c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Using last traded price")
	return price, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// yfTicker adapts a go-yfinance ticker.
type yfTicker struct {
	t *ticker.Ticker
}

func openYFinance(symbol string) (tickerData, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, err
	}
	return &yfTicker{t: t}, nil
}

func (y *yfTicker) RegularMarketPrice() (float64, error) {
	quote, err := y.t.Quote()
	if err != nil {
		return 0, err
	}
	if quote == nil {
		return 0, fmt.Errorf("empty quote")
	}
	return quote.RegularMarketPrice, nil
}

func (y *yfTicker) LastPrice() (float64, error) {
	info, err := y.t.Info()
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, fmt.Errorf("empty info")
	}
	return info.CurrentPrice, nil
}

func (y *yfTicker) Close() {
	y.t.Close()
}
