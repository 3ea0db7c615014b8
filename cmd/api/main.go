package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"watchtime-report-service/internal/config"
	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/server"

	exportsHttp "watchtime-report-service/internal/exports/adapters/http/fiber"
	exportsRepoPg "watchtime-report-service/internal/exports/adapters/postgres"
	exportsUsecase "watchtime-report-service/internal/exports/core/usecase"

	watchtimeHttp "watchtime-report-service/internal/watchtime/adapters/http/fiber"
	watchtimeMetrics "watchtime-report-service/internal/watchtime/adapters/metrics"
	"watchtime-report-service/internal/watchtime/adapters/upstream"
	watchtimeUsecase "watchtime-report-service/internal/watchtime/core/usecase"

	_ "github.com/lib/pq"

	_ "watchtime-report-service/docs"
)

// @title Watchtime Report API
// @version 1.0
// @description Aggregated lesson watch time per student, as JSON or CSV.
// @BasePath /
func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := watchtimeMetrics.NewMetrics()
	if err := pipelineMetrics.Register(reg); err != nil {
		logging.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Upstream source + report usecase
	source := upstream.NewClient(cfg.Upstream, upstream.WithObserver(pipelineMetrics))
	reportUC := watchtimeUsecase.NewGetReportUseCase(source, cfg.Location(),
		watchtimeUsecase.WithObserver(pipelineMetrics),
		watchtimeUsecase.WithAllowedEmailDomains(cfg.Report.AllowedEmailDomains),
	)

	// Export audit (optional)
	recordExportUC, listExportsUC, db := openExportAudit(cfg.Postgres)
	if db != nil {
		defer db.Close()
	}

	// HTTP (Fiber) app + handlers
	app, err := server.New(cfg.Server, reg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build http app")
	}

	reportHandler := watchtimeHttp.NewReportHandler(reportUC, watchtimeHttp.WithExportRecorder(recordExportUC))
	reportHandler.Register(app)

	exportsHandler := exportsHttp.NewExportsHandler(listExportsUC)
	app.Get("/exportacoes", exportsHandler.ListExports)

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logging.Error().Err(err).Msg("fiber stopped")
		}
	}()

	logging.Info().Str("addr", cfg.Server.Addr).Str("upstream", cfg.Upstream.URL).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logging.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logging.Error().Err(err).Msg("fiber shutdown error")
	}

	logging.Info().Msg("server exiting")
}

// openExportAudit connects to postgres when a DSN is configured. Without one
// both usecases answer ErrAuditDisabled.
func openExportAudit(cfg config.PostgresConfig) (*exportsUsecase.RecordExportUseCase, *exportsUsecase.ListExportsUseCase, *sql.DB) {
	if cfg.DSN == "" {
		logging.Info().Msg("export audit disabled: postgres.dsn is not set")
		return exportsUsecase.NewRecordExportUseCase(nil), exportsUsecase.NewListExportsUseCase(nil), nil
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open postgres")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to ping postgres")
	}

	exportsDB := exportsRepoPg.NewSQLDB(db)
	if err := exportsRepoPg.EnsureSchema(ctx, exportsDB); err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare export audit schema")
	}

	exportRepository := exportsRepoPg.NewExportRepository(exportsDB)
	return exportsUsecase.NewRecordExportUseCase(exportRepository), exportsUsecase.NewListExportsUseCase(exportRepository), db
}
