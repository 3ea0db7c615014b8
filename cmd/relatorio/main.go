package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"watchtime-report-service/internal/config"
	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/watchtime/adapters/report"
	"watchtime-report-service/internal/watchtime/adapters/upstream"
	"watchtime-report-service/internal/watchtime/core/domain"
	"watchtime-report-service/internal/watchtime/core/ports"
	"watchtime-report-service/internal/watchtime/core/usecase"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
	stdoutPath = "-"
)

type reportRunner interface {
	Execute(ctx context.Context, in usecase.GetReportInput) (*usecase.GetReportOutput, error)
}

type exportOptions struct {
	params usecase.FilterParams
	format string
	out    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "relatorio",
		Short:         "Watch-time report tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: CONFIG_PATH or ./config.yaml)")

	root.AddCommand(newExportCmd(&configPath))
	return root
}

func loadReportUseCase(configPath string) (*usecase.GetReportUseCase, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	source := upstream.NewClient(cfg.Upstream)
	return usecase.NewGetReportUseCase(source, cfg.Location(),
		usecase.WithAllowedEmailDomains(cfg.Report.AllowedEmailDomains),
	), nil
}

func newExportCmd(configPath *string) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch, aggregate and write the watch-time report",
		Example: `  relatorio export --from 2024-01-01 --to 2024-01-31
  relatorio export --intervalo 7d --cidade itabira --format json --out -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != formatCSV && opts.format != formatJSON {
				return fmt.Errorf("unsupported format %q: want csv or json", opts.format)
			}
			uc, err := loadReportUseCase(*configPath)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), uc, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.params.From, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.params.To, "to", "", "end date YYYY-MM-DD, inclusive")
	cmd.Flags().StringVar(&opts.params.Interval, "intervalo", "", "relative interval (15m, 3h, 2d); wins over --from/--to")
	cmd.Flags().StringVar(&opts.params.City, "cidade", "", "city: itabira|bomdespacho|todos")
	cmd.Flags().StringVar(&opts.format, "format", formatCSV, "output format: csv|json")
	cmd.Flags().StringVar(&opts.out, "out", "", `output path, "-" for stdout (default: computed report filename)`)
	return cmd
}

// runExport writes the report to opts.out and reports the destination on
// stderr. Having no data is not an error.
func runExport(ctx context.Context, uc reportRunner, opts exportOptions, stdout, stderr io.Writer) error {
	ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())

	started := time.Now()
	out, err := uc.Execute(ctx, usecase.GetReportInput{FilterParams: opts.params})
	if err != nil {
		if errors.Is(err, ports.ErrNoData) || errors.Is(err, usecase.ErrSchemaMismatch) {
			_, _ = fmt.Fprintln(stderr, "Nenhum dado para exportar")
			return nil
		}
		return err
	}

	path := opts.out
	if path == "" {
		path = outputFilename(out.Range, opts.format)
	}

	w := stdout
	if path != stdoutPath {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	rows := report.ToRows(out.Rows)
	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(rows)
	default:
		err = report.WriteCSV(w, rows)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if path != stdoutPath {
		_, _ = fmt.Fprintf(stderr, "wrote %d rows to %s in %s\n", len(rows), path, time.Since(started).Round(time.Millisecond))
	}
	return nil
}

// outputFilename is the CSV attachment name, with a .json extension for JSON.
func outputFilename(rng domain.Range, format string) string {
	name := report.Filename(rng)
	if format == formatJSON {
		name = strings.TrimSuffix(name, ".csv") + ".json"
	}
	return name
}
