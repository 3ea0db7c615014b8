package ports

import (
	"context"

	"watchtime-report-service/internal/exports/core/domain"
)

type ExportRepositoryPort interface {
	InsertExport(ctx context.Context, e *domain.Export) error
}

type ExportReaderPort interface {
	// ListExports returns at most limit exports, newest first.
	ListExports(ctx context.Context, limit int) ([]domain.Export, error)
}
