package middleware

import (
	"pos-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware adds a request ID to each request, keeping one sent by the caller
func RequestIDMiddleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(echo.HeaderXRequestID, requestID)
			}

			// Add request ID to response header
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)
			c.Set("request_id", requestID)

			l := base
			if l == nil {
				l = logger.GetLogger()
			}
			ctxLogger := l.With(zap.String("request_id", requestID))
			c.Set(logger.EchoKey, ctxLogger)

			// Services below the handlers log through the request context
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), ctxLogger)))

			return next(c)
		}
	}
}
