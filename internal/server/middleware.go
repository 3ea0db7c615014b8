package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"watchtime-report-service/internal/logging"
)

// RequestContext copies the request id set by the requestid middleware into
// the user context, where logging.Ctx finds it.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
			c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// AccessLog logs one line per request and records it in m.
func AccessLog(m *HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler pick the status before it is logged.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		route := c.Route().Path
		m.Observe(c.Method(), route, strconv.Itoa(status), elapsed)

		ev := logging.Ctx(c.UserContext()).Info()
		if status >= fiber.StatusInternalServerError {
			ev = logging.Ctx(c.UserContext()).Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request")
		return nil
	}
}
