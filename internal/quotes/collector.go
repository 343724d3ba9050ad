// Package quotes collects current prices for the distinct tickers of a ledger.
package quotes

import (
	"context"
	"strings"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

// DefaultDelay is the pause between consecutive lookups required by the upstream rate limit.
const DefaultDelay = 800 * time.Millisecond

// ProgressFunc is called after each ticker, successful or not.
type ProgressFunc func(done, total int, ticker string)

// Result is the outcome of one collection pass.
type Result struct {
	Quotes domain.QuoteMap
	Failed []string
}

// Collector fetches quotes sequentially. Lookups start at most once per
// delay, and a successful lookup is followed by a full delay before the
// next one starts, however long the upstream took to answer.
type Collector struct {
	source  domain.QuoteSource
	limiter *rate.Limiter
	delay   time.Duration
	log     zerolog.Logger
}

// NewCollector creates a collector throttled by delay. A zero delay disables the throttle.
func NewCollector(source domain.QuoteSource, delay time.Duration, log zerolog.Logger) *Collector {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Collector{
		source:  source,
		limiter: rate.NewLimiter(limit, 1),
		delay:   delay,
		log:     log.With().Str("service", "quotes").Logger(),
	}
}

// DistinctTickers returns the non-empty tickers in first-seen order.
func DistinctTickers(tickers []string) []string {
	return lo.Uniq(lo.Filter(tickers, func(t string, _ int) bool {
		return strings.TrimSpace(t) != ""
	}))
}

// Collect looks up every distinct ticker once. A failed lookup does not stop
// the loop, but any failure makes Collect return a KindQuoteUnavailable error
// alongside the partial result. Context cancellation aborts immediately.
func (c *Collector) Collect(ctx context.Context, tickers []string, progress ProgressFunc) (Result, error) {
	distinct := DistinctTickers(tickers)
	result := Result{Quotes: make(domain.QuoteMap, len(distinct))}

	c.log.Info().Int("tickers", len(distinct)).Msg("Fetching quotes")

	for i, ticker := range distinct {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, domain.NewError(domain.KindQuoteUnavailable, "quotes.collect", ticker, err)
		}

		price, err := c.source.GetPrice(ctx, ticker)
		ok := err == nil
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, domain.NewError(domain.KindQuoteUnavailable, "quotes.collect", ticker, ctxErr)
			}
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to get quote")
			result.Failed = append(result.Failed, ticker)
		} else {
			result.Quotes[ticker] = price
			c.log.Debug().Str("ticker", ticker).Float64("price", price).Msg("Quote fetched")
		}

		if progress != nil {
			progress(i+1, len(distinct), ticker)
		}

		if ok && i < len(distinct)-1 {
			if err := c.pause(ctx); err != nil {
				return result, domain.NewError(domain.KindQuoteUnavailable, "quotes.collect", ticker, err)
			}
		}
	}

	if len(result.Failed) > 0 {
		return result, domain.Errorf(domain.KindQuoteUnavailable, "quotes.collect",
			"no quote for %s", strings.Join(result.Failed, ", "))
	}

	c.log.Info().Int("quotes", len(result.Quotes)).Msg("Quotes fetched")
	return result, nil
}

func (c *Collector) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
