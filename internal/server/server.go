// Package server builds the fiber application shared by every HTTP route:
// JSON codec, request ids, panic recovery, access logging and the
// operational endpoints (/metrics, /docs, /healthz).
package server

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"watchtime-report-service/internal/config"
	"watchtime-report-service/internal/logging"
)

const appName = "watchtime-report-service"

// New returns an app with middleware and operational routes mounted. The
// registry receives the HTTP collectors and is served at /metrics.
func New(cfg config.ServerConfig, reg *prometheus.Registry) (*fiber.App, error) {
	httpMetrics := NewHTTPMetrics()
	if err := httpMetrics.Register(reg); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: logging.GenerateRequestID,
	}))
	app.Use(RequestContext())
	app.Use(AccessLog(httpMetrics))
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	return app, nil
}
