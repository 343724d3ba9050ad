package snapshots

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/database"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	testhelpers "github.com/proyectofinalunicorn/Proyecto-Final/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var execDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repository, *database.DB) {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, "snapshots")
	t.Cleanup(cleanup)
	return NewRepository(db, zerolog.Nop()), db
}

func ledgerRow(ticker string, qty float64) domain.ValuedTransaction {
	return domain.ValuedTransaction{
		Transaction: domain.Transaction{
			Date:            time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			BatchDate:       execDay,
			Ticker:          ticker,
			Description:     "CEDEAR " + ticker,
			Currency:        "Pesos",
			InstrumentClass: domain.InstrumentClassCedears,
			Quantity:        qty,
			PurchasePrice:   100,
			Fees:            5,
			DollarMEP:       340,
			DollarOficial:   350,
		},
		Valuation: domain.Valuation{
			CostARS: 1005, CostUSD: 2.96, HoldingARS: 1491, HoldingUSD: 4.39,
			ResultARS: 486, ResultUSD: 1.43, ReturnARS: 48.36, ReturnUSD: 48.36,
		},
	}
}

func historyRows() []domain.HistoryRow {
	return []domain.HistoryRow{
		{ExecutionDate: execDay, Ticker: "AAPL", Currency: domain.CurrencyARS, Quantity: 10, Cost: 1005, Holding: 1491, Result: 486, Return: 0.48},
		{ExecutionDate: execDay, Ticker: "AAPL", Currency: domain.CurrencyUSD, Quantity: 10, Cost: 2.96, Holding: 4.39, Result: 1.43, Return: 0.48},
	}
}

func TestEnsureSchema_CreatesAllRelations(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "idempotent")

	for _, table := range []string{TableLedger, TableHistory, TableRates} {
		n, err := repo.CountRows(ctx, table)
		require.NoError(t, err, table)
		assert.Zero(t, n, table)
	}
}

func TestCountRows_UnknownTable(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.CountRows(context.Background(), "users; DROP TABLE cedears")
	require.Error(t, err)
}

func TestCountRows_MissingRelation(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.CountRows(context.Background(), TableLedger)
	require.Error(t, err)
	assert.Equal(t, domain.KindMissingRelation, domain.KindOf(err))
}

func TestReplaceLedger_WipesPreviousRowsAndRestartsIDs(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceLedger(ctx, []domain.ValuedTransaction{
		ledgerRow("AAPL", 10), ledgerRow("KO", 4), ledgerRow("MSFT", 1),
	}))
	n, err := repo.CountRows(ctx, TableLedger)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, repo.ReplaceLedger(ctx, []domain.ValuedTransaction{ledgerRow("NVDA", 2)}))
	n, err = repo.CountRows(ctx, TableLedger)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var (
		id     int64
		ticker string
		fecha  string
	)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT id_operacion, ticker, fecha FROM cedears").Scan(&id, &ticker, &fecha))
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "NVDA", ticker)
	assert.Equal(t, "2025-05-02", fecha)
}

func TestReplaceLedger_EmptyLedgerClearsTable(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceLedger(ctx, []domain.ValuedTransaction{ledgerRow("AAPL", 10)}))
	require.NoError(t, repo.ReplaceLedger(ctx, nil))

	n, err := repo.CountRows(ctx, TableLedger)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplaceLedger_PersistsNaNAsNull(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()

	row := ledgerRow("GIFT", 1)
	row.ReturnARS = math.NaN()
	row.ReturnUSD = math.NaN()
	require.NoError(t, repo.ReplaceLedger(ctx, []domain.ValuedTransaction{row}))

	var ret sql.NullFloat64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT rendimiento_ars FROM cedears").Scan(&ret))
	assert.False(t, ret.Valid)
}

func TestAppendHistory_SameDayRerunIsSkipped(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	res, err := repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)
	assert.Equal(t, AppendResult{Inserted: 2}, res)

	res, err = repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)
	assert.Equal(t, AppendResult{Skipped: 2}, res)

	n, err := repo.CountRows(ctx, TableHistory)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppendHistory_NewTickerOnRerunIsInserted(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)

	rows := append(historyRows(), domain.HistoryRow{
		ExecutionDate: execDay, Ticker: "KO", Currency: domain.CurrencyARS, Quantity: 4, Cost: 1002,
	})
	res, err := repo.AppendHistory(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, AppendResult{Inserted: 1, Skipped: 2}, res)
}

func TestAppendHistory_NextDayAppends(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)

	next := historyRows()
	for i := range next {
		next[i].ExecutionDate = execDay.AddDate(0, 0, 1)
	}
	res, err := repo.AppendHistory(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	n, err := repo.CountRows(ctx, TableHistory)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestAppendRates_DedupByDateAndType(t *testing.T) {
	repo, db := newRepo(t)
	ctx := context.Background()
	pair := domain.RatePair{Date: execDay, Oficial: 1090, MEP: 1172.3}

	res, err := repo.AppendRates(ctx, pair.Records())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	res, err = repo.AppendRates(ctx, pair.Records())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)

	var valor float64
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT valor FROM historico_dolar WHERE fecha = ? AND tipo = ?", "2025-06-02", domain.RateTypeMEP).Scan(&valor))
	assert.Equal(t, 1172.3, valor)
}

func TestResetHistory_DropsRows(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)

	require.NoError(t, repo.ResetHistory(ctx))

	n, err := repo.CountRows(ctx, TableHistory)
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err := repo.AppendHistory(ctx, historyRows())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
}

func TestPing(t *testing.T) {
	repo, _ := newRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t, "INSERT INTO historico_dolar (fecha, tipo, valor) VALUES (?, ?, ?)", insertSQL(TableRates, rateColumns))
	assert.Equal(t, "INSERT INTO historico_dolar (fecha, tipo, valor) VALUES ($1, $2, $3)",
		database.Rebind(database.DialectPostgres, insertSQL(TableRates, rateColumns)))
}

func TestDDL_PostgresUsesNativeTypes(t *testing.T) {
	ddl := ledgerDDL(database.DialectPostgres)
	assert.Contains(t, ddl, "id_operacion BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "fecha DATE")
	assert.Contains(t, historyDDL(database.DialectPostgres), "PRIMARY KEY (ticker, fecha_ejecucion, moneda)")
	assert.Contains(t, ratesDDL(database.DialectSQLite), "PRIMARY KEY (fecha, tipo)")
}
