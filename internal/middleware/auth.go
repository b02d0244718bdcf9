package middleware

import (
	"net/http"
	"strings"

	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// AuthMiddleware validates the bearer JWT and stores the account in the context
func AuthMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(userIDKey, claims.UserID)
			c.Set(emailKey, claims.Email)
			c.Set(logger.EchoKey, log.With(zap.String("user_id", claims.UserID)))

			return next(c)
		}
	}
}

// GetUserIDFromContext returns the authenticated account id
func GetUserIDFromContext(c echo.Context) (string, bool) {
	userID, ok := c.Get(userIDKey).(string)
	return userID, ok && userID != ""
}
