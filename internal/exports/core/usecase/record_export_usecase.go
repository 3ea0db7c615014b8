package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"watchtime-report-service/internal/exports/core/domain"
	"watchtime-report-service/internal/exports/core/ports"
)

var (
	ErrAuditDisabled = errors.New("export audit is disabled")
	ErrInvalidExport = errors.New("invalid export record")
)

type RecordExportUseCase struct {
	repo ports.ExportRepositoryPort
	now  func() time.Time
}

// NewRecordExportUseCase accepts a nil repo; Execute then returns
// ErrAuditDisabled.
func NewRecordExportUseCase(repo ports.ExportRepositoryPort) *RecordExportUseCase {
	return &RecordExportUseCase{repo: repo, now: time.Now}
}

type RecordExportInput struct {
	Filename   string
	RangeStart time.Time
	RangeEnd   time.Time
	Interval   string
	City       string
	Rows       int
	RequestID  string
}

func (uc *RecordExportUseCase) Execute(ctx context.Context, in RecordExportInput) error {
	if uc.repo == nil {
		return ErrAuditDisabled
	}
	if err := validateExport(in); err != nil {
		return err
	}

	e := &domain.Export{
		ID:         uuid.NewString(),
		Filename:   in.Filename,
		RangeStart: in.RangeStart.UTC(),
		RangeEnd:   in.RangeEnd.UTC(),
		Interval:   in.Interval,
		City:       in.City,
		Rows:       in.Rows,
		RequestID:  in.RequestID,
		ExportedAt: uc.now().UTC(),
	}

	return uc.repo.InsertExport(ctx, e)
}

func validateExport(in RecordExportInput) error {
	if in.Filename == "" || in.Rows < 0 {
		return ErrInvalidExport
	}
	if in.RangeEnd.Before(in.RangeStart) {
		return ErrInvalidExport
	}
	return nil
}
