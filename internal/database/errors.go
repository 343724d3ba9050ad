package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Postgres SQLSTATE codes the store reacts to.
const (
	pgUniqueViolation      = "23505"
	pgUndefinedTable       = "42P01"
	pgInvalidPassword      = "28P01"
	pgInvalidAuthorization = "28000"
	pgConnectionClass      = "08"
)

// Classify maps a driver error to a typed pipeline error. detail names what
// was being touched (a table, the database) for the user message.
func Classify(err error, op, detail string) error {
	if err == nil {
		return nil
	}
	var typed *domain.Error
	if errors.As(err, &typed) {
		return err
	}
	return domain.NewError(KindOf(err), op, detail, err)
}

// KindOf returns the error kind of a raw driver error.
func KindOf(err error) domain.ErrorKind {
	if err == nil {
		return domain.KindUnknown
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return domain.KindConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return domain.KindDuplicateKey
		case pgErr.Code == pgUndefinedTable:
			return domain.KindMissingRelation
		case pgErr.Code == pgInvalidPassword, pgErr.Code == pgInvalidAuthorization,
			strings.HasPrefix(pgErr.Code, pgConnectionClass):
			return domain.KindConnection
		}
		return domain.KindUnknown
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return domain.KindDuplicateKey
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE constraint failed"):
			return domain.KindDuplicateKey
		case strings.Contains(liteErr.Error(), "no such table"):
			return domain.KindMissingRelation
		case code&0xff == sqlite3.SQLITE_CANTOPEN, code&0xff == sqlite3.SQLITE_NOTADB:
			return domain.KindConnection
		}
		return domain.KindUnknown
	}

	return domain.KindUnknown
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	return KindOf(err) == domain.KindDuplicateKey
}
