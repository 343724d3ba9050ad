package valuation

import (
	"math"
	"sort"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/shopspring/decimal"
)

// PolicyCutover is the first day converted at min(oficial, MEP) instead of MEP.
var PolicyCutover = time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)

// SaleHaircut is the selling cost deducted from current holdings.
const SaleHaircut = 0.006

// FilterCedears keeps the Cedears rows in their original order.
func FilterCedears(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.InstrumentClass == domain.InstrumentClassCedears {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDate stable-sorts txs by transaction date. It returns false, leaving
// the input order untouched, when no row carries a date.
func SortByDate(txs []domain.Transaction) bool {
	dated := false
	for _, tx := range txs {
		if !tx.Date.IsZero() {
			dated = true
			break
		}
	}
	if !dated {
		return false
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return true
}

// CostARS is quantity * unit price + fees.
func CostARS(tx domain.Transaction) float64 {
	return tx.Quantity*tx.PurchasePrice + tx.Fees
}

// CostUSD converts costARS with the rates recorded on the transaction:
// MEP before the cutover, min(oficial, MEP) from the cutover day on.
func CostUSD(tx domain.Transaction, costARS float64) float64 {
	if tx.Date.Before(PolicyCutover) {
		return toUSD(costARS, tx.DollarMEP)
	}
	return toUSD(costARS, math.Min(tx.DollarOficial, tx.DollarMEP))
}

// toUSD divides by rate. A rate that is not a positive number has no
// meaningful conversion and yields NaN, which is stored as NULL.
func toUSD(ars, rate float64) float64 {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return math.NaN()
	}
	return ars / rate
}

// HoldingARS is the current local value net of the sale haircut.
func HoldingARS(quantity, price float64) float64 {
	return quantity * price * (1 - SaleHaircut)
}

// HoldingUSD converts a local holding at the lower of today's two rates.
func HoldingUSD(holdingARS float64, rates domain.RatePair) float64 {
	return toUSD(holdingARS, rates.Min())
}

// PercentReturn is (value/cost - 1) * 100 rounded to 2 decimals.
// A zero or non-finite cost has no defined return and yields NaN.
func PercentReturn(value, cost float64) float64 {
	if cost == 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return math.NaN()
	}
	return Round2((value/cost - 1) * 100)
}

// Round2 rounds half to even at 2 decimals. NaN and infinities pass through.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).RoundBank(2).Float64()
	return f
}
