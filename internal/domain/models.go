// Package domain provides core domain models and types.
package domain

import (
	"math"
	"time"
)

// Currency tags a long-form history row.
type Currency string

const (
	CurrencyARS Currency = "ars"
	CurrencyUSD Currency = "usd"
)

// InstrumentClassCedears is the only instrument class the valuation pipeline keeps.
const InstrumentClassCedears = "Cedears"

// Rate types persisted in historico_dolar
const (
	RateTypeOficial = "Oficial"
	RateTypeMEP     = "MEP"
)

// Transaction is one brokerage ledger entry after column normalization.
// DolarCCL and Operacion are dropped during normalization.
type Transaction struct {
	Date            time.Time `json:"fecha"`
	BatchDate       time.Time `json:"fecha_descarga"`
	Ticker          string    `json:"ticker"`
	Description     string    `json:"descripcion"`
	Currency        string    `json:"moneda"`
	InstrumentClass string    `json:"tipo"`
	Quantity        float64   `json:"cantidad"`
	PurchasePrice   float64   `json:"precio_compra"`
	Fees            float64   `json:"gastos"`
	DollarMEP       float64   `json:"dolar_mep"`
	DollarOficial   float64   `json:"dolar_oficial"`
}

// Valuation holds the fields derived from a Transaction and the current quotes.
// Return fields are percentages rounded to 2 decimals; NaN when the cost is zero.
type Valuation struct {
	CostARS    float64 `json:"costo_ars"`
	CostUSD    float64 `json:"costo_usd"`
	HoldingARS float64 `json:"tenencia_ars"`
	HoldingUSD float64 `json:"tenencia_usd"`
	ResultARS  float64 `json:"resultados_ars"`
	ResultUSD  float64 `json:"resultados_usd"`
	ReturnARS  float64 `json:"rendimiento_ars"`
	ReturnUSD  float64 `json:"rendimiento_usd"`
}

// ValuedTransaction is a ledger row: the transaction plus its valuation.
type ValuedTransaction struct {
	Transaction
	Valuation
}

// QuoteMap maps a ticker to its latest local-currency price.
type QuoteMap map[string]float64

// PriceOrZero is the gap-filling policy for tickers without a quote: the
// position is valued at zero. A lookup that failed never reaches this point,
// the run is aborted before valuation.
func (q QuoteMap) PriceOrZero(ticker string) float64 {
	price, ok := q[ticker]
	if !ok || math.IsNaN(price) {
		return 0
	}
	return price
}

// RatePair is the day's official and MEP (bolsa) selling rates.
type RatePair struct {
	Date    time.Time `json:"fecha"`
	Oficial float64   `json:"oficial"`
	MEP     float64   `json:"mep"`
}

// Min returns the lower of the two rates, used to convert holdings to USD.
func (r RatePair) Min() float64 {
	return math.Min(r.Oficial, r.MEP)
}

// Records returns the two rows persisted in historico_dolar for the pair.
func (r RatePair) Records() []RateRecord {
	return []RateRecord{
		{Date: r.Date, Type: RateTypeOficial, Value: r.Oficial},
		{Date: r.Date, Type: RateTypeMEP, Value: r.MEP},
	}
}

// RateRecord is one row of historico_dolar, keyed by (Date, Type).
type RateRecord struct {
	Date  time.Time `json:"fecha"`
	Type  string    `json:"tipo"`
	Value float64   `json:"valor"`
}

// AggregatedPosition is the per-ticker sum of the valued ledger.
// Returns are recomputed as result/cost on the summed values (ratio, not percent).
type AggregatedPosition struct {
	ExecutionDate time.Time `json:"fecha_ejecucion"`
	Ticker        string    `json:"ticker"`
	Quantity      float64   `json:"cantidad"`
	CostARS       float64   `json:"costo_ars"`
	CostUSD       float64   `json:"costo_usd"`
	HoldingARS    float64   `json:"tenencia_ars"`
	HoldingUSD    float64   `json:"tenencia_usd"`
	ResultARS     float64   `json:"resultados_ars"`
	ResultUSD     float64   `json:"resultados_usd"`
	ReturnARS     float64   `json:"rendimiento_ars"`
	ReturnUSD     float64   `json:"rendimiento_usd"`
}

// Column returns a wide column by its stored name (e.g. "costo_ars").
func (p AggregatedPosition) Column(name string) (float64, bool) {
	switch name {
	case "cantidad":
		return p.Quantity, true
	case "costo_ars":
		return p.CostARS, true
	case "costo_usd":
		return p.CostUSD, true
	case "tenencia_ars":
		return p.HoldingARS, true
	case "tenencia_usd":
		return p.HoldingUSD, true
	case "resultados_ars":
		return p.ResultARS, true
	case "resultados_usd":
		return p.ResultUSD, true
	case "rendimiento_ars":
		return p.ReturnARS, true
	case "rendimiento_usd":
		return p.ReturnUSD, true
	}
	return 0, false
}

// HistoryRow is a long-form, currency-keyed row of datos_historicos_cedears.
// (Ticker, ExecutionDate, Currency) is the natural key.
type HistoryRow struct {
	ExecutionDate time.Time `json:"fecha_ejecucion"`
	Ticker        string    `json:"ticker"`
	Currency      Currency  `json:"moneda"`
	Quantity      float64   `json:"cantidad"`
	Cost          float64   `json:"costo"`
	Holding       float64   `json:"tenencia"`
	Result        float64   `json:"resultados"`
	Return        float64   `json:"rendimiento"`
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
