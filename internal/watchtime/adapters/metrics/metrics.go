// Package metrics exposes Prometheus collectors for the report pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gobreaker "github.com/sony/gobreaker/v2"

	"watchtime-report-service/internal/watchtime/adapters/upstream"
	"watchtime-report-service/internal/watchtime/core/ports"
)

const (
	MetricUpstreamRequests = "watchtime_upstream_requests_total"
	MetricUpstreamDuration = "watchtime_upstream_request_duration_seconds"
	MetricUpstreamRecords  = "watchtime_upstream_records_total"
	MetricBreakerState     = "watchtime_upstream_breaker_state"
	MetricRecordsDiscarded = "watchtime_records_discarded_total"
	MetricReportsTotal     = "watchtime_reports_total"
	MetricReportRows       = "watchtime_report_rows"
)

// Metrics is safe for concurrent use.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	upstreamRecords  prometheus.Counter
	breakerState     *prometheus.GaugeVec
	recordsDiscarded prometheus.Counter
	reportsTotal     *prometheus.CounterVec
	reportRows       prometheus.Histogram
}

var (
	_ upstream.Observer        = (*Metrics)(nil)
	_ ports.ReportObserverPort = (*Metrics)(nil)
)

// NewMetrics creates unregistered collectors; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUpstreamRequests,
			Help: "Upstream window requests by result (success, failure, rejected)",
		}, []string{"result"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricUpstreamDuration,
			Help:    "Latency of upstream window requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricUpstreamRecords,
			Help: "Raw records received from the upstream API",
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricBreakerState,
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"name"}),
		recordsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRecordsDiscarded,
			Help: "Records dropped during normalization",
		}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricReportsTotal,
			Help: "Reports built, by outcome (ok, no_data)",
		}, []string{"outcome"}),
		reportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricReportRows,
			Help:    "Aggregated rows per report",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.upstreamRequests,
		m.upstreamDuration,
		m.upstreamRecords,
		m.breakerState,
		m.recordsDiscarded,
		m.reportsTotal,
		m.reportRows,
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveWindow(result string, elapsed time.Duration, records int) {
	m.upstreamRequests.WithLabelValues(result).Inc()
	if result != upstream.ResultRejected {
		m.upstreamDuration.Observe(elapsed.Seconds())
	}
	m.upstreamRecords.Add(float64(records))
}

func (m *Metrics) ObserveBreakerState(name string, state gobreaker.State) {
	m.breakerState.WithLabelValues(name).Set(stateToFloat(state))
}

func (m *Metrics) ObserveReport(s ports.ReportStats) {
	m.recordsDiscarded.Add(float64(s.Discarded))
	if s.NoData {
		m.reportsTotal.WithLabelValues("no_data").Inc()
		return
	}
	m.reportsTotal.WithLabelValues("ok").Inc()
	m.reportRows.Observe(float64(s.Rows))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
