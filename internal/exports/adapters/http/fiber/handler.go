package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"watchtime-report-service/internal/exports/core/domain"
	"watchtime-report-service/internal/exports/core/usecase"
	"watchtime-report-service/internal/logging"
)

type ListExportsUseCase interface {
	Execute(ctx context.Context, in usecase.ListExportsInput) ([]domain.Export, error)
}

type ExportsHandler struct {
	uc ListExportsUseCase
}

func NewExportsHandler(uc ListExportsUseCase) *ExportsHandler {
	return &ExportsHandler{uc: uc}
}

// ListExports godoc
// @Summary List recent CSV exports
// @Description Returns the audit trail of CSV downloads, newest first
// @Tags Exports
// @Produce json
// @Param limit query int false "Maximum entries (default 20, max 100)"
// @Success 200 {object} ListExportsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exportacoes [get]
func (h *ExportsHandler) ListExports(c *fiber.Ctx) error {
	limit := 0
	if s := c.Query("limit", ""); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be an integer",
			})
		}
		limit = n
	}

	exports, err := h.uc.Execute(c.UserContext(), usecase.ListExportsInput{Limit: limit})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAuditDisabled):
			return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
				Error:   "audit_disabled",
				Message: err.Error(),
			})
		case errors.Is(err, usecase.ErrInvalidLimit):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_limit",
				Message: err.Error(),
			})
		default:
			logging.Ctx(c.UserContext()).Error().Err(err).Msg("failed to list exports")
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := ListExportsResponse{
		Limit:   effectiveLimit(limit),
		Exports: make([]ExportResponse, 0, len(exports)),
	}
	for _, e := range exports {
		resp.Exports = append(resp.Exports, ExportResponse{
			ID:         e.ID,
			Filename:   e.Filename,
			RangeStart: e.RangeStart.UTC().Format(time.RFC3339),
			RangeEnd:   e.RangeEnd.UTC().Format(time.RFC3339),
			Interval:   e.Interval,
			City:       e.City,
			Rows:       e.Rows,
			RequestID:  e.RequestID,
			ExportedAt: e.ExportedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func effectiveLimit(n int) int {
	switch {
	case n == 0:
		return usecase.DefaultListLimit
	case n > usecase.MaxListLimit:
		return usecase.MaxListLimit
	default:
		return n
	}
}
