// Package snapshots persists the valued ledger, the long-form position
// history and the day's dollar rates.
package snapshots

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/database"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
)

// Writer stores one run's snapshots.
type Writer interface {
	// Ping checks the store is reachable before a run does expensive work.
	Ping(ctx context.Context) error
	// ReplaceLedger atomically swaps the ledger table contents for rows.
	ReplaceLedger(ctx context.Context, rows []domain.ValuedTransaction) error
	// AppendHistory inserts history rows, skipping rows already loaded.
	AppendHistory(ctx context.Context, rows []domain.HistoryRow) (AppendResult, error)
	// AppendRates inserts the day's rate records, skipping rows already loaded.
	AppendRates(ctx context.Context, rows []domain.RateRecord) (AppendResult, error)
}

// AppendResult counts the outcome of an append.
type AppendResult struct {
	Inserted int
	Skipped  int
}

// Repository is the SQL-backed Writer.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

var _ Writer = (*Repository)(nil)

// NewRepository creates a new snapshot repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Ping runs the connectivity check.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// EnsureSchema creates the three relations if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	d := r.db.Dialect()
	for _, rel := range []struct{ table, ddl string }{
		{TableLedger, ledgerDDL(d)},
		{TableHistory, historyDDL(d)},
		{TableRates, ratesDDL(d)},
	} {
		if _, err := r.db.ExecContext(ctx, rel.ddl); err != nil {
			return database.Classify(fmt.Errorf("failed to create %s: %w", rel.table, err), "snapshots.ensure_schema", rel.table)
		}
	}
	r.log.Debug().Msg("Schema ensured")
	return nil
}

// ResetHistory drops and recreates the history table with its natural key.
// Every stored history row is lost.
func (r *Repository) ResetHistory(ctx context.Context) error {
	const op = "snapshots.reset_history"
	err := database.WithTransaction(ctx, r.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+TableHistory); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, historyDDL(r.db.Dialect()))
		return err
	})
	if err != nil {
		return database.Classify(err, op, TableHistory)
	}
	r.log.Warn().Str("table", TableHistory).Msg("History table recreated")
	return nil
}

// ReplaceLedger creates the ledger table if absent, deletes every row,
// resets the id sequence and inserts rows, all in one transaction.
func (r *Repository) ReplaceLedger(ctx context.Context, rows []domain.ValuedTransaction) error {
	const op = "snapshots.replace_ledger"
	d := r.db.Dialect()

	err := database.WithTransaction(ctx, r.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ledgerDDL(d)); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		if err := truncate(ctx, tx, d, TableLedger); err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, database.Rebind(d, insertSQL(TableLedger, ledgerColumns)))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			if _, err := stmt.ExecContext(ctx, ledgerArgs(d, row)...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return database.Classify(err, op, TableLedger)
	}

	r.log.Info().Int("rows", len(rows)).Str("table", TableLedger).Msg("Ledger replaced")
	return nil
}

// truncate empties table and restarts its identity.
func truncate(ctx context.Context, tx *sql.Tx, d database.Dialect, table string) error {
	if d == database.DialectPostgres {
		_, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+table+" RESTART IDENTITY")
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	return err
}

// AppendHistory creates the history table if absent and inserts rows one by
// one. A row whose (ticker, fecha_ejecucion, moneda) already exists is skipped.
func (r *Repository) AppendHistory(ctx context.Context, rows []domain.HistoryRow) (AppendResult, error) {
	d := r.db.Dialect()
	args := make([][]any, len(rows))
	for i, row := range rows {
		args[i] = []any{
			row.Ticker,
			nullFloat(row.Quantity),
			dateArg(d, row.ExecutionDate),
			string(row.Currency),
			nullFloat(row.Cost),
			nullFloat(row.Holding),
			nullFloat(row.Result),
			nullFloat(row.Return),
		}
	}
	return r.appendRows(ctx, "snapshots.append_history", TableHistory, historyDDL(d), historyColumns, args)
}

// AppendRates creates the rates table if absent and inserts the records,
// skipping a (fecha, tipo) already stored.
func (r *Repository) AppendRates(ctx context.Context, rows []domain.RateRecord) (AppendResult, error) {
	d := r.db.Dialect()
	args := make([][]any, len(rows))
	for i, row := range rows {
		args[i] = []any{dateArg(d, row.Date), row.Type, nullFloat(row.Value)}
	}
	return r.appendRows(ctx, "snapshots.append_rates", TableRates, ratesDDL(d), rateColumns, args)
}

func (r *Repository) appendRows(ctx context.Context, op, table, ddl string, columns []string, rows [][]any) (AppendResult, error) {
	var res AppendResult

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return res, database.Classify(fmt.Errorf("failed to create table: %w", err), op, table)
	}

	query := insertSQL(table, columns)
	for i, args := range rows {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			if database.IsDuplicate(err) {
				res.Skipped++
				continue
			}
			return res, database.Classify(fmt.Errorf("failed to insert row %d: %w", i+1, err), op, table)
		}
		res.Inserted++
	}

	if res.Skipped > 0 {
		r.log.Warn().
			Str("table", table).
			Int("skipped", res.Skipped).
			Int("inserted", res.Inserted).
			Msg("Data already loaded today, duplicate rows skipped")
	} else {
		r.log.Info().Str("table", table).Int("rows", res.Inserted).Msg("Rows appended")
	}
	return res, nil
}

// CountRows returns the number of rows in one of the snapshot tables.
func (r *Repository) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case TableLedger, TableHistory, TableRates:
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, database.Classify(err, "snapshots.count_rows", table)
	}
	return n, nil
}

func ledgerArgs(d database.Dialect, row domain.ValuedTransaction) []any {
	return []any{
		nullFloat(row.Quantity),
		row.Description,
		dateArg(d, row.Date),
		dateArg(d, row.BatchDate),
		nullFloat(row.Fees),
		row.Currency,
		nullFloat(row.PurchasePrice),
		row.Ticker,
		row.InstrumentClass,
		nullFloat(row.DollarMEP),
		nullFloat(row.DollarOficial),
		nullFloat(row.CostARS),
		nullFloat(row.CostUSD),
		nullFloat(row.HoldingARS),
		nullFloat(row.HoldingUSD),
		nullFloat(row.ResultARS),
		nullFloat(row.ResultUSD),
		nullFloat(row.ReturnARS),
		nullFloat(row.ReturnUSD),
	}
}

// nullFloat stores NaN and infinities as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// dateArg binds a calendar date; a zero time is NULL. SQLite keeps ISO text.
func dateArg(d database.Dialect, t time.Time) any {
	if t.IsZero() {
		return nil
	}
	day := domain.Day(t)
	if d == database.DialectSQLite {
		return day.Format("2006-01-02")
	}
	return day
}
