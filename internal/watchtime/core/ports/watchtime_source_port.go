package ports

import (
	"context"
	"errors"

	"watchtime-report-service/internal/watchtime/core/domain"
)

// ErrNoData means every fetch window failed or came back empty. It is not a
// "zero matches" answer and callers render it as an empty report.
var ErrNoData = errors.New("no watch-time data available")

type WatchtimeSourcePort interface {
	// Fetch returns the raw records covering r, or ErrNoData.
	Fetch(ctx context.Context, r domain.Range) ([]domain.RawRecord, error)
}

// ReportStats summarizes one pass through the pipeline.
type ReportStats struct {
	Fetched   int
	Discarded int
	Rows      int
	NoData    bool
}

type ReportObserverPort interface {
	ObserveReport(s ReportStats)
}
