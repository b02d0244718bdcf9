package handler

import (
	"errors"
	"net/http"

	"pos-service/internal/middleware"
	"pos-service/internal/repository"
	"pos-service/internal/service"
	"pos-service/pkg/logger"
	"pos-service/pkg/syncapi"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SyncHandler struct {
	service *service.SyncService
}

func NewSyncHandler(svc *service.SyncService) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Pull handles POST /api/sync/pull
func (h *SyncHandler) Pull(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.PullRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Invalid pull request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := requireOwner(c, req.UserID); err != nil {
		return err
	}

	resp, err := h.service.Pull(c.Request().Context(), req)
	if err != nil {
		log.Error("Failed to pull changes", zap.String("user_id", req.UserID), zap.Error(err))
		return c.JSON(statusFor(err), echo.Map{"error": "Failed to pull changes"})
	}

	return c.JSON(http.StatusOK, resp)
}

// Push handles POST /api/sync/push
func (h *SyncHandler) Push(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.PushRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Invalid push request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := requireOwner(c, req.UserID); err != nil {
		return err
	}

	log.Info("Sync push received",
		zap.String("user_id", req.UserID),
		zap.Int("products", len(req.Products)),
		zap.Int("transactions", len(req.Transactions)))

	resp, err := h.service.Push(c.Request().Context(), req)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": "Failed to apply changes"})
	}

	return c.JSON(http.StatusOK, resp)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	return c.Validate(req)
}

// requireOwner rejects a body naming an account other than the token's
func requireOwner(c echo.Context, userID string) error {
	tokenUser, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if userID != tokenUser {
		logger.FromContext(c).Warn("User mismatch",
			zap.String("token_user", tokenUser),
			zap.String("body_user", userID))
		return echo.NewHTTPError(http.StatusForbidden, "userId does not match the authenticated account")
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
