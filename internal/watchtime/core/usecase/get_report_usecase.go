package usecase

import (
	"context"
	"errors"
	"time"

	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/watchtime/core/domain"
	"watchtime-report-service/internal/watchtime/core/ports"
)

type GetReportInput struct {
	FilterParams
}

type GetReportOutput struct {
	Range domain.Range
	Rows  []domain.AggregatedRow
}

type GetReportUseCase struct {
	source   ports.WatchtimeSourcePort
	observer ports.ReportObserverPort

	loc            *time.Location
	allowedDomains []string
	now            func() time.Time
}

type Option func(*GetReportUseCase)

// WithObserver reports pipeline stats after every Execute.
func WithObserver(o ports.ReportObserverPort) Option {
	return func(uc *GetReportUseCase) { uc.observer = o }
}

// WithAllowedEmailDomains restricts reports to the given email domains.
func WithAllowedEmailDomains(domains []string) Option {
	return func(uc *GetReportUseCase) { uc.allowedDomains = domains }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *GetReportUseCase) { uc.now = now }
}

func NewGetReportUseCase(source ports.WatchtimeSourcePort, loc *time.Location, opts ...Option) *GetReportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	uc := &GetReportUseCase{
		source: source,
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs fetch, normalize, filter and aggregate for one request.
// It returns ports.ErrNoData when nothing could be fetched and
// ErrSchemaMismatch when the upstream records lack a required field; callers
// render both as an empty report.
func (uc *GetReportUseCase) Execute(ctx context.Context, in GetReportInput) (*GetReportOutput, error) {
	now := uc.now().UTC()
	rng := ResolveRange(in.FilterParams, now, uc.loc)

	raw, err := uc.source.Fetch(ctx, rng)
	if err != nil {
		uc.observe(ports.ReportStats{NoData: errors.Is(err, ports.ErrNoData)})
		return nil, err
	}

	norm, err := Normalize(raw, now)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("records", len(raw)).Msg("normalization aborted")
		uc.observe(ports.ReportStats{Fetched: len(raw), NoData: true})
		return nil, err
	}
	if norm.Discarded > 0 {
		logging.Ctx(ctx).Warn().Int("discarded", norm.Discarded).Msg("dropped malformed watch-time records")
	}

	events := FilterEmailDomains(norm.Events, uc.allowedDomains)
	events = Filter(ctx, events, in.FilterParams, now)
	rows := Aggregate(events)

	uc.observe(ports.ReportStats{
		Fetched:   len(raw),
		Discarded: norm.Discarded,
		Rows:      len(rows),
	})

	return &GetReportOutput{Range: rng, Rows: rows}, nil
}

func (uc *GetReportUseCase) observe(s ports.ReportStats) {
	if uc.observer != nil {
		uc.observer.ObserveReport(s)
	}
}
