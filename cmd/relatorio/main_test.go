package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"watchtime-report-service/internal/watchtime/core/domain"
	"watchtime-report-service/internal/watchtime/core/ports"
	"watchtime-report-service/internal/watchtime/core/usecase"
)

type fakeRunner struct {
	ExecuteFn func(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error)
	lastInput usecase.GetReportInput
}

func (f *fakeRunner) Execute(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error) {
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return nil, ports.ErrNoData
}

func twoDayOutput() *usecase.GetReportOutput {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	return &usecase.GetReportOutput{
		Range: domain.Range{Start: from, End: to.AddDate(0, 0, 1), FromDay: from, ToDay: to},
		Rows: []domain.AggregatedRow{{
			GroupKey:        domain.GroupKey{FullName: "Ana", Email: "ana@pditabira.com", LessonName: "Aula 1", CourseName: "Python"},
			DurationSeconds: 61,
		}},
	}
}

func okRunner() *fakeRunner {
	return &fakeRunner{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error) {
			return twoDayOutput(), nil
		},
	}
}

// ------------------------------------------------------------
// OUTPUT DESTINATIONS
// ------------------------------------------------------------

func TestRunExport_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	var stdout, stderr bytes.Buffer
	err := runExport(context.Background(), okRunner(), exportOptions{format: formatCSV}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(dir, "relatorio_watchtime_01-01-2024_ate_03-01-2024.csv"))
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if !strings.HasPrefix(string(body), "\ufefffull_name;") {
		t.Fatalf("expected BOM csv, got %q", body)
	}
	if !strings.Contains(stderr.String(), "wrote 1 rows") {
		t.Fatalf("expected summary on stderr, got %q", stderr.String())
	}
}

func TestRunExport_StdoutJSON(t *testing.T) {
	runner := okRunner()
	opts := exportOptions{
		params: usecase.FilterParams{Interval: "7d", City: "itabira"},
		format: formatJSON,
		out:    stdoutPath,
	}

	var stdout, stderr bytes.Buffer
	if err := runExport(context.Background(), runner, opts, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if runner.lastInput.Interval != "7d" || runner.lastInput.City != "itabira" {
		t.Fatalf("flags not forwarded: %+v", runner.lastInput)
	}
	if !strings.Contains(stdout.String(), `"duration": "00:01:01"`) {
		t.Fatalf("expected indented json, got %s", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected no summary for stdout output, got %q", stderr.String())
	}
}

// ------------------------------------------------------------
// NO DATA / ERRORS
// ------------------------------------------------------------

func TestRunExport_NoData(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	var stdout, stderr bytes.Buffer
	if err := runExport(context.Background(), &fakeRunner{}, exportOptions{format: formatCSV}, &stdout, &stderr); err != nil {
		t.Fatalf("no data should not be an error, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Nenhum dado para exportar") {
		t.Fatalf("expected no-data message, got %q", stderr.String())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no file to be written, got %d entries", len(entries))
	}
}

func TestRunExport_UnexpectedError(t *testing.T) {
	runner := &fakeRunner{
		ExecuteFn: func(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error) {
			return nil, errors.New("boom")
		},
	}

	var stdout, stderr bytes.Buffer
	if err := runExport(context.Background(), runner, exportOptions{format: formatCSV, out: stdoutPath}, &stdout, &stderr); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"export", "--format", "xml"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestOutputFilename(t *testing.T) {
	rng := twoDayOutput().Range

	if got := outputFilename(rng, formatCSV); got != "relatorio_watchtime_01-01-2024_ate_03-01-2024.csv" {
		t.Fatalf("unexpected csv filename %s", got)
	}
	if got := outputFilename(rng, formatJSON); got != "relatorio_watchtime_01-01-2024_ate_03-01-2024.json" {
		t.Fatalf("unexpected json filename %s", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
