package usecase

import (
	"context"
	"errors"

	"watchtime-report-service/internal/exports/core/domain"
	"watchtime-report-service/internal/exports/core/ports"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrInvalidLimit = errors.New("invalid limit")

type ListExportsInput struct {
	Limit int // 0 = DefaultListLimit
}

type ListExportsUseCase struct {
	reader ports.ExportReaderPort
}

// NewListExportsUseCase accepts a nil reader; Execute then returns
// ErrAuditDisabled.
func NewListExportsUseCase(reader ports.ExportReaderPort) *ListExportsUseCase {
	return &ListExportsUseCase{reader: reader}
}

// Execute clamps the limit to MaxListLimit and reads the newest exports.
func (uc *ListExportsUseCase) Execute(ctx context.Context, in ListExportsInput) ([]domain.Export, error) {
	if uc.reader == nil {
		return nil, ErrAuditDisabled
	}

	limit := in.Limit
	switch {
	case limit < 0:
		return nil, ErrInvalidLimit
	case limit == 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	exports, err := uc.reader.ListExports(ctx, limit)
	if err != nil {
		return nil, err
	}
	return exports, nil
}
