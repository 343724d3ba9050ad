package testing

import (
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
)

// NewTransactionFixtures returns a small mixed brokerage ledger: three Cedears
// rows over two tickers on both sides of the cost policy cutover, plus a bond
// row that the Cedears filter must drop.
func NewTransactionFixtures() []domain.Transaction {
	batch := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Transaction{
		{
			Date:            time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			BatchDate:       batch,
			Ticker:          "AAPL",
			Description:     "CEDEAR APPLE INC.",
			Currency:        "Pesos",
			InstrumentClass: domain.InstrumentClassCedears,
			Quantity:        10,
			PurchasePrice:   100,
			Fees:            5,
			DollarMEP:       340,
			DollarOficial:   350,
		},
		{
			Date:            time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			BatchDate:       batch,
			Ticker:          "KO",
			Description:     "CEDEAR COCA-COLA CO",
			Currency:        "Pesos",
			InstrumentClass: domain.InstrumentClassCedears,
			Quantity:        4,
			PurchasePrice:   250,
			Fees:            2,
			DollarMEP:       1200,
			DollarOficial:   1080,
		},
		{
			Date:            time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
			BatchDate:       batch,
			Ticker:          "AAPL",
			Description:     "CEDEAR APPLE INC.",
			Currency:        "Pesos",
			InstrumentClass: domain.InstrumentClassCedears,
			Quantity:        5,
			PurchasePrice:   90,
			Fees:            1,
			DollarMEP:       1250,
			DollarOficial:   1100,
		},
		{
			Date:            time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			BatchDate:       batch,
			Ticker:          "AL30",
			Description:     "BONO REP. ARGENTINA USD 2030",
			Currency:        "Pesos",
			InstrumentClass: "Bonos",
			Quantity:        100,
			PurchasePrice:   700,
			Fees:            3,
			DollarMEP:       1150,
			DollarOficial:   1050,
		},
	}
}

// NewQuoteFixtures returns prices for every Cedears ticker in NewTransactionFixtures.
func NewQuoteFixtures() map[string]float64 {
	return map[string]float64{
		"AAPL": 150,
		"KO":   300,
	}
}

// NewRatePairFixture returns the day's rates used with the fixtures.
func NewRatePairFixture(day time.Time) domain.RatePair {
	return domain.RatePair{Date: domain.Day(day), Oficial: 350, MEP: 340}
}
