package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"watchtime-report-service/internal/config"
	"watchtime-report-service/internal/logging"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:            ":0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestApp(t *testing.T) (*fiber.App, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	app, err := New(testServerConfig(), reg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return app, reg
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{Level: "info", Format: "json"}) })
	return &buf
}

// ------------------------------------------------------------
// REQUEST ID
// ------------------------------------------------------------

func TestNew_RequestIDReachesUserContext(t *testing.T) {
	app, _ := newTestApp(t)

	var seen string
	app.Get("/echo", func(c *fiber.Ctx) error {
		seen = logging.RequestIDFromContext(c.UserContext())
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if seen != "req-123" {
		t.Fatalf("expected request id req-123 in context, got %q", seen)
	}
	if got := resp.Header.Get(fiber.HeaderXRequestID); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestNew_GeneratesRequestID(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if len(resp.Header.Get(fiber.HeaderXRequestID)) != 36 {
		t.Fatalf("expected generated uuid, got %q", resp.Header.Get(fiber.HeaderXRequestID))
	}
}

// ------------------------------------------------------------
// ACCESS LOG / METRICS
// ------------------------------------------------------------

func TestAccessLog_LogsAndCounts(t *testing.T) {
	logs := captureLogs(t)
	app, reg := newTestApp(t)

	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1); err != nil {
		t.Fatalf("app.Test error: %v", err)
	}

	if !strings.Contains(logs.String(), `"route":"/healthz"`) || !strings.Contains(logs.String(), `"status":200`) {
		t.Fatalf("expected access log line, got %s", logs.String())
	}

	count, err := testutil.GatherAndCount(reg, MetricHTTPRequests)
	if err != nil {
		t.Fatalf("GatherAndCount error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 request series, got %d", count)
	}
}

func TestAccessLog_RecoversPanics(t *testing.T) {
	logs := captureLogs(t)
	app, _ := newTestApp(t)

	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(logs.String(), `"status":500`) {
		t.Fatalf("expected 500 to be logged, got %s", logs.String())
	}
}

func TestNew_ServesMetrics(t *testing.T) {
	app, reg := newTestApp(t)

	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "watchtime_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "watchtime_test_total 1") {
		t.Fatalf("expected custom metric in exposition, got %s", body)
	}
}

func TestNew_DuplicateRegistryFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(testServerConfig(), reg); err != nil {
		t.Fatalf("first New() returned error: %v", err)
	}
	if _, err := New(testServerConfig(), reg); err == nil {
		t.Fatalf("expected duplicate collector registration to fail")
	}
}
