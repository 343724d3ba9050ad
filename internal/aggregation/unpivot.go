package aggregation

import (
	"fmt"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
)

// Column stems melted into the long history form.
const (
	StemCost    = "costo"
	StemHolding = "tenencia"
	StemResult  = "resultados"
	StemReturn  = "rendimiento"
)

var (
	// DefaultStems are the measures of a history row.
	DefaultStems = []string{StemCost, StemHolding, StemResult, StemReturn}
	// DefaultSuffixes are the currencies, in output order.
	DefaultSuffixes = []domain.Currency{domain.CurrencyARS, domain.CurrencyUSD}
)

const unpivotOp = "aggregation.unpivot"

// Unpivot melts every "<stem>_<suffix>" column of each position into one row
// per suffix, keyed by (ticker, quantity, execution date). Rows come out
// position by position, in suffix order.
func Unpivot(positions []domain.AggregatedPosition, stems []string, suffixes []domain.Currency) ([]domain.HistoryRow, error) {
	rows := make([]domain.HistoryRow, 0, len(positions)*len(suffixes))
	for _, p := range positions {
		for _, suffix := range suffixes {
			row := domain.HistoryRow{
				ExecutionDate: p.ExecutionDate,
				Ticker:        p.Ticker,
				Currency:      suffix,
				Quantity:      p.Quantity,
			}
			for _, stem := range stems {
				column := fmt.Sprintf("%s_%s", stem, suffix)
				v, ok := p.Column(column)
				if !ok {
					return nil, domain.Errorf(domain.KindReshape, unpivotOp, "column %q not found", column)
				}
				if err := setMeasure(&row, stem, v); err != nil {
					return nil, err
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// DefaultUnpivot melts positions with the default stems and currencies.
func DefaultUnpivot(positions []domain.AggregatedPosition) ([]domain.HistoryRow, error) {
	return Unpivot(positions, DefaultStems, DefaultSuffixes)
}

func setMeasure(row *domain.HistoryRow, stem string, v float64) error {
	switch stem {
	case StemCost:
		row.Cost = v
	case StemHolding:
		row.Holding = v
	case StemResult:
		row.Result = v
	case StemReturn:
		row.Return = v
	default:
		return domain.Errorf(domain.KindReshape, unpivotOp, "no history column for stem %q", stem)
	}
	return nil
}
