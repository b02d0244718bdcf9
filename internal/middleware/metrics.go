package middleware

import (
	"errors"
	"strconv"
	"time"

	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(m *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()

			status := c.Response().Status
			var httpErr *echo.HTTPError
			if err != nil && !c.Response().Committed && errors.As(err, &httpErr) {
				status = httpErr.Code
			}

			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			if m != nil {
				m.HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
				m.HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
			}

			return err
		}
	}
}
