package snapshots

import (
	"context"
	"errors"
	"sync"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/database"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
)

// Opener connects to the store. It is called at most once.
type Opener func() (*database.DB, error)

// LazyRepository is a Writer that defers connecting until its first call,
// so a run that fails on its input never touches the database.
type LazyRepository struct {
	open Opener
	log  zerolog.Logger

	once sync.Once
	db   *database.DB
	repo *Repository
	err  error
}

var _ Writer = (*LazyRepository)(nil)

// NewLazyRepository creates a Writer that calls open on first use.
func NewLazyRepository(open Opener, log zerolog.Logger) *LazyRepository {
	return &LazyRepository{open: open, log: log}
}

func (l *LazyRepository) connect() (*Repository, error) {
	l.once.Do(func() {
		db, err := l.open()
		if err != nil {
			var typed *domain.Error
			if !errors.As(err, &typed) {
				err = domain.NewError(domain.KindConnection, "snapshots.open", "", err)
			}
			l.err = err
			return
		}
		l.db = db
		l.repo = NewRepository(db, l.log)
	})
	return l.repo, l.err
}

// Ping opens the connection if needed and checks it.
func (l *LazyRepository) Ping(ctx context.Context) error {
	repo, err := l.connect()
	if err != nil {
		return err
	}
	return repo.Ping(ctx)
}

// ReplaceLedger delegates to the opened Repository.
func (l *LazyRepository) ReplaceLedger(ctx context.Context, rows []domain.ValuedTransaction) error {
	repo, err := l.connect()
	if err != nil {
		return err
	}
	return repo.ReplaceLedger(ctx, rows)
}

// AppendHistory delegates to the opened Repository.
func (l *LazyRepository) AppendHistory(ctx context.Context, rows []domain.HistoryRow) (AppendResult, error) {
	repo, err := l.connect()
	if err != nil {
		return AppendResult{}, err
	}
	return repo.AppendHistory(ctx, rows)
}

// AppendRates delegates to the opened Repository.
func (l *LazyRepository) AppendRates(ctx context.Context, rows []domain.RateRecord) (AppendResult, error) {
	repo, err := l.connect()
	if err != nil {
		return AppendResult{}, err
	}
	return repo.AppendRates(ctx, rows)
}

// Close releases the connection if one was opened.
func (l *LazyRepository) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
