package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"watchtime-report-service/internal/exports/core/domain"
	"watchtime-report-service/internal/exports/core/ports"
)

// ErrSchemaMissing means report_exports does not exist; run EnsureSchema.
var ErrSchemaMissing = errors.New("report_exports table is missing")

// undefined_table
const pqUndefinedTable = "42P01"

//go:embed schema.sql
var schemaSQL string

type ExportRepository struct {
	db DB
}

func NewExportRepository(db DB) *ExportRepository {
	return &ExportRepository{db: db}
}

var (
	_ ports.ExportRepositoryPort = (*ExportRepository)(nil)
	_ ports.ExportReaderPort     = (*ExportRepository)(nil)
)

// EnsureSchema creates report_exports when missing.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create report_exports: %w", err)
	}
	return nil
}

const insertExportSQL = `
INSERT INTO report_exports (
    id,
    filename,
    range_start,
    range_end,
    interval,
    city,
    row_count,
    request_id,
    exported_at
) VALUES (
    $1, $2, $3, $4, $5,
    $6, $7, $8, $9
);
`

func (r *ExportRepository) InsertExport(ctx context.Context, e *domain.Export) error {
	_, err := r.db.ExecContext(ctx, insertExportSQL,
		e.ID,
		e.Filename,
		e.RangeStart,
		e.RangeEnd,
		nullable(e.Interval),
		nullable(e.City),
		e.Rows,
		nullable(e.RequestID),
		e.ExportedAt,
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

const listExportsSQL = `
SELECT
    id,
    filename,
    range_start,
    range_end,
    interval,
    city,
    row_count,
    request_id,
    exported_at
FROM report_exports
ORDER BY exported_at DESC
LIMIT $1`

func (r *ExportRepository) ListExports(ctx context.Context, limit int) ([]domain.Export, error) {
	rows, err := r.db.QueryContext(ctx, listExportsSQL, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	exports := make([]domain.Export, 0, limit)
	for rows.Next() {
		var (
			e                         domain.Export
			interval, city, requestID sql.NullString
			rowCount                  int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.Filename,
			&e.RangeStart,
			&e.RangeEnd,
			&interval,
			&city,
			&rowCount,
			&requestID,
			&e.ExportedAt,
		); err != nil {
			return nil, err
		}
		e.Interval = interval.String
		e.City = city.String
		e.RequestID = requestID.String
		e.Rows = int(rowCount)
		e.RangeStart = e.RangeStart.UTC()
		e.RangeEnd = e.RangeEnd.UTC()
		e.ExportedAt = e.ExportedAt.UTC()
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exports, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pqErr.Message)
	}
	return err
}
