// Package aggregation sums the valued ledger per ticker and reshapes the
// per-ticker positions into the long, currency-keyed history rows.
package aggregation

import (
	"math"
	"sort"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/valuation"
)

// Aggregate groups the ledger by ticker in ascending ticker order. Sums are
// rounded to 2 decimals and returns are recomputed as result/cost on the
// rounded sums, so a position's return is not the mean of its rows' returns.
func Aggregate(ledger []domain.ValuedTransaction, executionDate time.Time) []domain.AggregatedPosition {
	byTicker := make(map[string]*domain.AggregatedPosition)
	for _, row := range ledger {
		p, ok := byTicker[row.Ticker]
		if !ok {
			p = &domain.AggregatedPosition{Ticker: row.Ticker}
			byTicker[row.Ticker] = p
		}
		p.Quantity += row.Quantity
		p.CostARS += row.CostARS
		p.CostUSD += row.CostUSD
		p.HoldingARS += row.HoldingARS
		p.HoldingUSD += row.HoldingUSD
		p.ResultARS += row.ResultARS
		p.ResultUSD += row.ResultUSD
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	day := domain.Day(executionDate)
	out := make([]domain.AggregatedPosition, 0, len(tickers))
	for _, t := range tickers {
		p := byTicker[t]
		p.ExecutionDate = day
		p.Quantity = valuation.Round2(p.Quantity)
		p.CostARS = valuation.Round2(p.CostARS)
		p.CostUSD = valuation.Round2(p.CostUSD)
		p.HoldingARS = valuation.Round2(p.HoldingARS)
		p.HoldingUSD = valuation.Round2(p.HoldingUSD)
		p.ResultARS = valuation.Round2(p.ResultARS)
		p.ResultUSD = valuation.Round2(p.ResultUSD)
		p.ReturnARS = ratio(p.ResultARS, p.CostARS)
		p.ReturnUSD = ratio(p.ResultUSD, p.CostUSD)
		out = append(out, *p)
	}
	return out
}

func ratio(result, cost float64) float64 {
	if cost == 0 || math.IsNaN(cost) {
		return math.NaN()
	}
	return result / cost
}
