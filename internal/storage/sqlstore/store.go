// Package sqlstore holds the SQL shared by the SQLite and PostgreSQL providers.
// Queries are written with '?' placeholders and rebound for the driver in use.
package sqlstore

import (
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/cadence/internal/errors"
)

// Queries implements the habit, completion and task parts of storage.Provider
// over a sqlx connection. Lifecycle methods belong to the embedding store.
type Queries struct {
	db *sqlx.DB
}

// New wraps an open connection
func New(db *sqlx.DB) Queries {
	return Queries{db: db}
}

// DB returns the underlying connection, or nil before Init/Load
func (q Queries) DB() *sqlx.DB {
	return q.db
}

func (q Queries) ready() error {
	if q.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func notFound(kind, key string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, key, errors.ErrNotFound)
	}
	return err
}

// expectOne converts a zero-row update into ErrNotFound
func expectOne(res sql.Result, kind, key string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, errors.ErrNotFound)
	}
	return nil
}
