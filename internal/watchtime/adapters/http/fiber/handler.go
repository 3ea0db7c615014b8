package fiber

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	exportsUsecase "watchtime-report-service/internal/exports/core/usecase"
	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/watchtime/adapters/report"
	"watchtime-report-service/internal/watchtime/core/ports"
	"watchtime-report-service/internal/watchtime/core/usecase"
)

// NoDataMessage is the plain-text body of an export with nothing to export.
const NoDataMessage = "Nenhum dado para exportar"

//go:embed static/index.html
var indexHTML []byte

type GetReportUseCase interface {
	Execute(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error)
}

// ExportRecorder stores the audit entry of a CSV download.
type ExportRecorder interface {
	Execute(ctx context.Context, in exportsUsecase.RecordExportInput) error
}

type ReportHandler struct {
	uc       GetReportUseCase
	recorder ExportRecorder
}

type Option func(*ReportHandler)

func WithExportRecorder(r ExportRecorder) Option {
	return func(h *ReportHandler) { h.recorder = r }
}

func NewReportHandler(uc GetReportUseCase, opts ...Option) *ReportHandler {
	h := &ReportHandler{uc: uc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the dashboard and report routes.
func (h *ReportHandler) Register(r fiber.Router) {
	r.Get("/", h.Index)
	r.Get("/dados", h.GetData)
	r.Get("/exportar_csv", h.ExportCSV)
}

// Index godoc
// @Summary Dashboard page
// @Tags Report
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (h *ReportHandler) Index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(http.StatusOK).Send(indexHTML)
}

// GetData godoc
// @Summary Aggregated watch time
// @Description Watch time per student, lesson and course. Returns [] when no data is available.
// @Tags Report
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, inclusive (YYYY-MM-DD)"
// @Param intervalo query string false "Relative interval, takes precedence over from/to (15m, 3h, 2d)"
// @Param cidade query string false "City: itabira | bomdespacho | todos"
// @Success 200 {array} report.Row
// @Router /dados [get]
func (h *ReportHandler) GetData(c *fiber.Ctx) error {
	out, err := h.uc.Execute(c.UserContext(), inputFromQuery(c))
	if err != nil {
		logReportError(c.UserContext(), err)
		return c.Status(http.StatusOK).JSON([]report.Row{})
	}

	return c.Status(http.StatusOK).JSON(report.ToRows(out.Rows))
}

// ExportCSV godoc
// @Summary Export aggregated watch time as CSV
// @Description Semicolon-delimited UTF-8 CSV with BOM. Answers text/plain "Nenhum dado para exportar" when the fetch yields nothing.
// @Tags Report
// @Produce text/csv
// @Produce plain
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date, inclusive (YYYY-MM-DD)"
// @Param intervalo query string false "Relative interval, takes precedence over from/to (15m, 3h, 2d)"
// @Param cidade query string false "City: itabira | bomdespacho | todos"
// @Success 200 {file} file "relatorio_watchtime_DD-MM-YYYY[_ate_DD-MM-YYYY].csv"
// @Router /exportar_csv [get]
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	ctx := c.UserContext()
	in := inputFromQuery(c)

	out, err := h.uc.Execute(ctx, in)
	if err != nil {
		logReportError(ctx, err)
		return noData(c)
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, report.ToRows(out.Rows)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to render csv")
		return noData(c)
	}

	filename := report.Filename(out.Range)
	h.recordExport(ctx, in, out, filename)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Status(http.StatusOK).Send(buf.Bytes())
}

func (h *ReportHandler) recordExport(ctx context.Context, in usecase.GetReportInput, out *usecase.GetReportOutput, filename string) {
	if h.recorder == nil {
		return
	}
	err := h.recorder.Execute(ctx, exportsUsecase.RecordExportInput{
		Filename:   filename,
		RangeStart: out.Range.Start,
		RangeEnd:   out.Range.End,
		Interval:   in.Interval,
		City:       in.City,
		Rows:       len(out.Rows),
		RequestID:  logging.RequestIDFromContext(ctx),
	})
	if err != nil && !errors.Is(err, exportsUsecase.ErrAuditDisabled) {
		logging.Ctx(ctx).Warn().Err(err).Str("filename", filename).Msg("failed to record export")
	}
}

func inputFromQuery(c *fiber.Ctx) usecase.GetReportInput {
	return usecase.GetReportInput{
		FilterParams: usecase.FilterParams{
			From:     c.Query("from"),
			To:       c.Query("to"),
			Interval: c.Query("intervalo"),
			City:     c.Query("cidade"),
		},
	}
}

func noData(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(http.StatusOK).SendString(NoDataMessage)
}

func logReportError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ports.ErrNoData):
		logging.Ctx(ctx).Info().Msg("report has no data")
	case errors.Is(err, usecase.ErrSchemaMismatch):
		logging.Ctx(ctx).Warn().Err(err).Msg("report skipped on schema mismatch")
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("report failed")
	}
}
