package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"watchtime-report-service/internal/exports/core/domain"
)

// fakeResult implements sql.Result for tests.
type fakeResult struct {
	rowsAffected int64
}

func (f *fakeResult) LastInsertId() (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeResult) RowsAffected() (int64, error) {
	return f.rowsAffected, nil
}

// fakeRowScanner implements RowScanner for tests.
type fakeRowScanner struct {
	rows   []fakeRow
	i      int
	err    error
	closed bool
}

type fakeRow struct {
	values []any
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.rows)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if f.i >= len(f.rows) {
		return errors.New("no more rows")
	}
	row := f.rows[f.i]
	if len(dest) != len(row.values) {
		return errors.New("dest length mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *int64:
			v, ok := row.values[i].(int64)
			if !ok {
				return errors.New("type assertion to int64 failed")
			}
			*d = v
		case *string:
			v, ok := row.values[i].(string)
			if !ok {
				return errors.New("type assertion to string failed")
			}
			*d = v
		case *sql.NullString:
			if row.values[i] == nil {
				*d = sql.NullString{}
				continue
			}
			v, ok := row.values[i].(string)
			if !ok {
				return errors.New("type assertion to string failed")
			}
			*d = sql.NullString{String: v, Valid: true}
		case *time.Time:
			v, ok := row.values[i].(time.Time)
			if !ok {
				return errors.New("type assertion to time.Time failed")
			}
			*d = v
		default:
			return errors.New("unsupported dest type")
		}
	}
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error {
	return f.err
}

func (f *fakeRowScanner) Close() error {
	f.closed = true
	return nil
}

// fakeDB implements DB interface for tests.
type fakeDB struct {
	ExecFn    func(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryFn   func(ctx context.Context, query string, args ...any) (RowScanner, error)
	lastQuery string
	lastArgs  []any
	called    bool
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.called = true
	f.lastQuery = query
	f.lastArgs = args
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return &fakeResult{rowsAffected: 1}, nil
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.called = true
	f.lastQuery = query
	f.lastArgs = args
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

func sampleExport() *domain.Export {
	return &domain.Export{
		ID:         "6f1c9a4e-1b7a-4c55-9d1f-1a2b3c4d5e6f",
		Filename:   "relatorio_watchtime_01-01-2024.csv",
		RangeStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Rows:       3,
		ExportedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

// ------------------------------------------------------------
// INSERT
// ------------------------------------------------------------

func TestExportRepository_InsertExport(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO report_exports") {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeResult{rowsAffected: 1}, nil
		},
	}

	repo := NewExportRepository(db)

	e := sampleExport()
	e.City = "itabira"

	if err := repo.InsertExport(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.called {
		t.Fatalf("expected ExecContext to be called")
	}
	if len(db.lastArgs) != 9 {
		t.Fatalf("expected 9 args, got %d", len(db.lastArgs))
	}
	if db.lastArgs[4] != nil {
		t.Fatalf("expected NULL interval, got %v", db.lastArgs[4])
	}
	if db.lastArgs[5] != "itabira" {
		t.Fatalf("expected city arg, got %v", db.lastArgs[5])
	}
}

func TestExportRepository_InsertExport_Error(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return nil, errors.New("db error")
		},
	}

	repo := NewExportRepository(db)

	err := repo.InsertExport(context.Background(), sampleExport())
	if err == nil || err.Error() != "db error" {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestExportRepository_InsertExport_MissingTable(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return nil, &pq.Error{Code: "42P01", Message: `relation "report_exports" does not exist`}
		},
	}

	repo := NewExportRepository(db)

	err := repo.InsertExport(context.Background(), sampleExport())
	if !errors.Is(err, ErrSchemaMissing) {
		t.Fatalf("expected ErrSchemaMissing, got %v", err)
	}
}

// ------------------------------------------------------------
// LIST
// ------------------------------------------------------------

func TestExportRepository_ListExports(t *testing.T) {
	e := sampleExport()
	scanner := &fakeRowScanner{
		rows: []fakeRow{
			{values: []any{e.ID, e.Filename, e.RangeStart, e.RangeEnd, "7d", nil, int64(3), "req-1", e.ExportedAt}},
			{values: []any{"id-2", "f2.csv", e.RangeStart, e.RangeEnd, nil, "itabira", int64(0), nil, e.ExportedAt}},
		},
	}

	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "ORDER BY exported_at DESC") {
				t.Fatalf("expected newest-first ordering, got: %s", query)
			}
			return scanner, nil
		},
	}

	repo := NewExportRepository(db)

	got, err := repo.ListExports(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.lastArgs) != 1 || db.lastArgs[0] != 20 {
		t.Fatalf("expected limit arg 20, got %v", db.lastArgs)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(got))
	}
	if got[0].Interval != "7d" || got[0].City != "" || got[0].RequestID != "req-1" || got[0].Rows != 3 {
		t.Fatalf("unexpected first export: %+v", got[0])
	}
	if got[1].Interval != "" || got[1].City != "itabira" {
		t.Fatalf("unexpected second export: %+v", got[1])
	}
	if !scanner.closed {
		t.Fatalf("expected rows to be closed")
	}
}

func TestExportRepository_ListExports_RowsErr(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return &fakeRowScanner{err: errors.New("iteration failed")}, nil
		},
	}

	repo := NewExportRepository(db)

	res, err := repo.ListExports(context.Background(), 5)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if res != nil {
		t.Fatalf("expected nil result on error")
	}
}

func TestExportRepository_ListExports_DBError(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return nil, errors.New("db failure")
		},
	}

	repo := NewExportRepository(db)

	if _, err := repo.ListExports(context.Background(), 5); err == nil || err.Error() != "db failure" {
		t.Fatalf("expected db failure, got %v", err)
	}
}

// ------------------------------------------------------------
// SCHEMA
// ------------------------------------------------------------

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.lastQuery, "CREATE TABLE IF NOT EXISTS report_exports") {
		t.Fatalf("unexpected schema query: %s", db.lastQuery)
	}
}

func TestNewSQLDB_QueryErrorReturnsNilScanner(t *testing.T) {
	db, err := sql.Open("postgres", "host=127.0.0.1 port=1 sslmode=disable connect_timeout=1")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := NewSQLDB(db).QueryContext(ctx, "SELECT 1")
	if err == nil {
		t.Fatalf("expected connection error, got nil")
	}
	if rows != nil {
		t.Fatalf("expected nil RowScanner on error, got %#v", rows)
	}
}
