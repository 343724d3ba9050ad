package domain

import "context"

// QuoteSource returns the latest local-market price of one ticker.
// Implementations fail with a KindQuoteUnavailable error.
type QuoteSource interface {
	GetPrice(ctx context.Context, ticker string) (float64, error)
}

// RatesSource returns the day's official and MEP dollar rates.
// Implementations fail closed with a KindRatesUnavailable error.
type RatesSource interface {
	GetRates(ctx context.Context) (RatePair, error)
}

// ProgressReporter receives run milestones. Fraction is in [0, 1].
type ProgressReporter interface {
	Report(fraction float64, message string)
}

// NopProgress discards progress updates.
type NopProgress struct{}

// Report implements ProgressReporter.
func (NopProgress) Report(float64, string) {}
