package middleware

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/arturoeanton/codelens-timemachine/internal/metrics"
	"github.com/gofiber/fiber/v3"
)

// UnmatchedRoute labels requests that reached no registered route.
const UnmatchedRoute = "unmatched"

// RequestMetrics records every request in the HTTP counters and latency histogram.
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture before the handler runs, Fiber reuses context objects
		method := c.Method()
		path := c.Path()
		own := c.Route()

		err := c.Next()

		// The error handler writes the status after the chain returns
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		// Unmatched requests never leave this middleware's own route
		route := c.Route().Path
		if c.Route() == own || isNotFound(err) {
			route = UnmatchedRoute
		}
		elapsed := time.Since(start)

		m.ObserveRequest(method, route, strconv.Itoa(status), elapsed.Seconds())
		slog.Debug("http request",
			"method", method,
			"path", path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)

		return err
	}
}

func isNotFound(err error) bool {
	var fe *fiber.Error
	return errors.As(err, &fe) && fe.Code == fiber.StatusNotFound
}
