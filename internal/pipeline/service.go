// Package pipeline runs one end-to-end valuation: load the workbook, value
// it, aggregate it and write the snapshots.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/aggregation"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/snapshots"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/valuation"
	"github.com/rs/zerolog"
)

// WorkbookLoader reads the brokerage export.
type WorkbookLoader interface {
	LoadFile(path string) ([]domain.Transaction, error)
}

// Valuer values a set of transactions.
type Valuer interface {
	Value(ctx context.Context, txs []domain.Transaction, progress domain.ProgressReporter) (*valuation.Result, error)
}

// Input names the workbook to process.
type Input struct {
	Path string
}

// Summary describes what a successful run wrote.
type Summary struct {
	ExecutionDate   time.Time       `json:"fecha_ejecucion"`
	Transactions    int             `json:"transactions"`
	LedgerRows      int             `json:"ledger_rows"`
	Positions       int             `json:"positions"`
	HistoryInserted int             `json:"history_inserted"`
	HistorySkipped  int             `json:"history_skipped"`
	RatesInserted   int             `json:"rates_inserted"`
	RatesSkipped    int             `json:"rates_skipped"`
	Rates           domain.RatePair `json:"rates"`
	Duration        time.Duration   `json:"duration"`
}

// Result is what the caller renders. Run never returns an error or panics:
// every failure ends up as Success=false with a user message.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	RunID   string   `json:"run_id"`
	Summary *Summary `json:"summary,omitempty"`
	Err     error    `json:"-"`
}

// Service orchestrates a run
type Service struct {
	loader WorkbookLoader
	valuer Valuer
	store  snapshots.Writer
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new pipeline service
func NewService(loader WorkbookLoader, valuer Valuer, store snapshots.Writer, log zerolog.Logger) *Service {
	return &Service{
		loader: loader,
		valuer: valuer,
		store:  store,
		now:    time.Now,
		log:    log.With().Str("service", "pipeline").Logger(),
	}
}

// SetClock replaces the clock that stamps the execution date.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run processes one workbook.
func (s *Service) Run(ctx context.Context, in Input, progress domain.ProgressReporter) (result Result) {
	if progress == nil {
		progress = domain.NopProgress{}
	}

	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Logger()
	started := s.now()

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic during run: %v", p)
			log.Error().Err(err).Msg("Run aborted")
			result = Result{RunID: runID, Message: UserMessage(err), Err: err}
		}
	}()

	log.Info().Str("file", in.Path).Msg("Run started")

	summary, err := s.run(ctx, in, progress, log)
	if err != nil {
		log.Error().
			Err(err).
			Str("kind", domain.KindOf(err).String()).
			Msg("Run failed")
		return Result{RunID: runID, Message: UserMessage(err), Err: err}
	}

	summary.Duration = s.now().Sub(started)
	log.Info().
		Int("positions", summary.Positions).
		Int("history_inserted", summary.HistoryInserted).
		Int("history_skipped", summary.HistorySkipped).
		Dur("duration", summary.Duration).
		Msg("Run completed")

	return Result{
		Success: true,
		Message: MsgSuccess,
		RunID:   runID,
		Summary: summary,
	}
}

func (s *Service) run(ctx context.Context, in Input, progress domain.ProgressReporter, log zerolog.Logger) (*Summary, error) {
	txs, err := s.loader.LoadFile(in.Path)
	if err != nil {
		return nil, err
	}

	if err := s.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	valued, err := s.valuer.Value(ctx, txs, progress)
	if err != nil {
		return nil, err
	}

	executionDate := domain.Day(s.now())
	positions := aggregation.Aggregate(valued.Ledger, executionDate)
	history, err := aggregation.DefaultUnpivot(positions)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("positions", len(positions)).Int("history_rows", len(history)).Msg("Positions aggregated")

	progress.Report(0.80, "Guardando en Base de Datos...")
	if err := s.store.ReplaceLedger(ctx, valued.Ledger); err != nil {
		return nil, err
	}

	progress.Report(0.85, "Guardando en Base de Datos...")
	historyRes, err := s.store.AppendHistory(ctx, history)
	if err != nil {
		return nil, err
	}
	if historyRes.Skipped > 0 {
		log.Warn().Int("skipped", historyRes.Skipped).Msg("Historical data already loaded today")
	}

	progress.Report(0.90, "Guardando en Base de Datos...")
	rates := valued.Rates
	rates.Date = executionDate
	ratesRes, err := s.store.AppendRates(ctx, rates.Records())
	if err != nil {
		return nil, err
	}
	if ratesRes.Skipped > 0 {
		log.Warn().Int("skipped", ratesRes.Skipped).Msg("Dollar rates already loaded today")
	}

	progress.Report(0.95, "Guardando en Base de Datos...")
	progress.Report(1.0, MsgSuccess)

	return &Summary{
		ExecutionDate:   executionDate,
		Transactions:    len(txs),
		LedgerRows:      len(valued.Ledger),
		Positions:       len(positions),
		HistoryInserted: historyRes.Inserted,
		HistorySkipped:  historyRes.Skipped,
		RatesInserted:   ratesRes.Inserted,
		RatesSkipped:    ratesRes.Skipped,
		Rates:           rates,
	}, nil
}
