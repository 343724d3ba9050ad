package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Dialect: DialectSQLite,
		DSN:     filepath.Join(t.TempDir(), "nested", "test.db"),
		Name:    "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_SQLiteCreatesDirectoryAndPings(t *testing.T) {
	db := newSQLite(t)
	assert.Equal(t, DialectSQLite, db.Dialect())
	assert.Equal(t, "test", db.Name())
	require.NoError(t, db.Ping(context.Background()))
}

func TestNew_UnsupportedDialect(t *testing.T) {
	_, err := New(Config{Dialect: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", Rebind(DialectPostgres, q))
	assert.Equal(t, q, Rebind(DialectSQLite, q))
}

func TestBuildConnectionString(t *testing.T) {
	assert.Contains(t, buildConnectionString("/tmp/a.db"), "/tmp/a.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, buildConnectionString("file:mem?mode=memory"), "file:mem?mode=memory&_pragma=")
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	err = WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)")
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithTransaction_RollsBackOnErrorAndPanic(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)")
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		_, _ = tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (2)")
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithTransaction_NilDB(t *testing.T) {
	err := WithTransaction(context.Background(), nil, func(*sql.Tx) error { return nil })
	require.Error(t, err)
}

func TestKindOf_SQLiteErrors(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE t (k TEXT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t (k) VALUES (?)", "a")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "INSERT INTO t (k) VALUES (?)", "a")
	require.Error(t, err)
	assert.Equal(t, domain.KindDuplicateKey, KindOf(err))
	assert.True(t, IsDuplicate(err))

	_, err = db.ExecContext(ctx, "SELECT * FROM missing")
	require.Error(t, err)
	assert.Equal(t, domain.KindMissingRelation, KindOf(err))
}

func TestKindOf_PostgresErrors(t *testing.T) {
	tests := []struct {
		code string
		want domain.ErrorKind
	}{
		{"23505", domain.KindDuplicateKey},
		{"42P01", domain.KindMissingRelation},
		{"28P01", domain.KindConnection},
		{"28000", domain.KindConnection},
		{"08006", domain.KindConnection},
		{"22012", domain.KindUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			err := &pgconn.PgError{Code: tc.code}
			assert.Equal(t, tc.want, KindOf(err))
		})
	}

	assert.Equal(t, domain.KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, domain.KindUnknown, KindOf(nil))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil, "op", ""))

	err := Classify(&pgconn.PgError{Code: "42P01"}, "snapshots.replace", "cedears")
	assert.Equal(t, domain.KindMissingRelation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "cedears")

	typed := domain.Errorf(domain.KindConnection, "x", "y")
	assert.Same(t, typed, Classify(typed, "op", "").(*domain.Error))
}
