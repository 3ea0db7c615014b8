package postgres

import (
	"context"
	"database/sql"
)

// RowScanner is the part of *sql.Rows the repository reads through.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DB covers the audit writes and the listing query.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error)
}

var _ RowScanner = (*sql.Rows)(nil)

// sqlDB narrows *sql.DB to DB. ExecContext is promoted unchanged.
type sqlDB struct {
	*sql.DB
}

func NewSQLDB(db *sql.DB) DB {
	return sqlDB{DB: db}
}

func (s sqlDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
