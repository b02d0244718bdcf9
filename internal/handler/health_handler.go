package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHandler struct {
	serviceName string
	db          *gorm.DB
}

func NewHealthHandler(serviceName string, db *gorm.DB) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, db: db}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	return c.JSON(code, echo.Map{
		"status":  status,
		"service": h.serviceName,
	})
}
