// Package valuation turns raw brokerage rows into the valued Cedears ledger.
package valuation

import (
	"context"
	"fmt"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/quotes"
	"github.com/rs/zerolog"
)

// QuoteCollector gathers one quote per distinct ticker.
type QuoteCollector interface {
	Collect(ctx context.Context, tickers []string, progress quotes.ProgressFunc) (quotes.Result, error)
}

// Result is the valued ledger plus the market data it was computed with.
type Result struct {
	Ledger []domain.ValuedTransaction
	Quotes domain.QuoteMap
	Rates  domain.RatePair
}

// Engine values transactions against current quotes and dollar rates.
type Engine struct {
	quotes QuoteCollector
	rates  domain.RatesSource
	log    zerolog.Logger
}

// NewEngine creates a new valuation engine
func NewEngine(collector QuoteCollector, rates domain.RatesSource, log zerolog.Logger) *Engine {
	return &Engine{
		quotes: collector,
		rates:  rates,
		log:    log.With().Str("service", "valuation").Logger(),
	}
}

// Value runs the valuation steps in order. Any quote lookup failure or a
// rates failure aborts with the typed error; nothing partial is returned.
func (e *Engine) Value(ctx context.Context, txs []domain.Transaction, progress domain.ProgressReporter) (*Result, error) {
	if progress == nil {
		progress = domain.NopProgress{}
	}

	cedears := FilterCedears(txs)
	e.log.Info().
		Int("rows", len(txs)).
		Int("cedears", len(cedears)).
		Msg("Filtered Cedears")
	if len(cedears) == 0 {
		e.log.Warn().Msg("No Cedears rows in workbook")
	}

	if !SortByDate(cedears) {
		e.log.Warn().Msg("Could not sort by date: transaction date missing")
	}

	ledger := make([]domain.ValuedTransaction, len(cedears))
	tickers := make([]string, len(cedears))
	for i, tx := range cedears {
		costARS := CostARS(tx)
		ledger[i] = domain.ValuedTransaction{
			Transaction: tx,
			Valuation: domain.Valuation{
				CostARS: costARS,
				CostUSD: CostUSD(tx, costARS),
			},
		}
		tickers[i] = tx.Ticker
	}
	progress.Report(0.10, "Costos calculados")

	collected, err := e.quotes.Collect(ctx, tickers, func(done, total int, ticker string) {
		progress.Report(0.10+0.60*float64(done)/float64(total),
			fmt.Sprintf("Cotización de %s (%d/%d)", ticker, done, total))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect quotes: %w", err)
	}

	for i := range ledger {
		ledger[i].HoldingARS = HoldingARS(ledger[i].Quantity, collected.Quotes.PriceOrZero(ledger[i].Ticker))
	}

	rates, err := e.rates.GetRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dollar rates: %w", err)
	}
	progress.Report(0.70, "Cotizaciones obtenidas.")

	for i := range ledger {
		v := &ledger[i].Valuation
		v.HoldingUSD = HoldingUSD(v.HoldingARS, rates)
		v.ResultARS = v.HoldingARS - v.CostARS
		v.ResultUSD = v.HoldingUSD - v.CostUSD
		v.ReturnARS = PercentReturn(v.HoldingARS, v.CostARS)
		v.ReturnUSD = PercentReturn(v.HoldingUSD, v.CostUSD)
	}

	e.log.Info().
		Int("ledger_rows", len(ledger)).
		Int("quotes", len(collected.Quotes)).
		Float64("oficial", rates.Oficial).
		Float64("mep", rates.MEP).
		Msg("Ledger valued")

	return &Result{
		Ledger: ledger,
		Quotes: collected.Quotes,
		Rates:  rates,
	}, nil
}
