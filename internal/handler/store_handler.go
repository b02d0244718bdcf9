package handler

import (
	"errors"
	"net/http"

	"pos-service/internal/middleware"
	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/logger"
	"pos-service/pkg/syncapi"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StoreHandler struct {
	stores  repository.StoreRepository
	metrics *prometheus.Metrics
}

func NewStoreHandler(stores repository.StoreRepository, metrics *prometheus.Metrics) *StoreHandler {
	return &StoreHandler{stores: stores, metrics: metrics}
}

// ListStores handles GET /api/stores/:userId
func (h *StoreHandler) ListStores(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("userId")
	if err := requireOwner(c, userID); err != nil {
		return err
	}

	h.metrics.RecordStoreOperation("list")
	stores, err := h.stores.ListByUser(c.Request().Context(), userID)
	if err != nil {
		log.Error("Failed to list stores", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve stores"})
	}

	resp := syncapi.StoresResponse{Stores: make([]syncapi.Store, 0, len(stores))}
	for _, s := range stores {
		resp.Stores = append(resp.Stores, s.ToAPI())
	}

	log.Info("Stores retrieved successfully", zap.Int("count", len(resp.Stores)))
	return c.JSON(http.StatusOK, resp)
}

// CreateStore handles POST /api/stores
func (h *StoreHandler) CreateStore(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.CreateStoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Invalid store request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.UserID == "" {
		req.UserID, _ = middleware.GetUserIDFromContext(c)
	}
	if err := requireOwner(c, req.UserID); err != nil {
		return err
	}

	h.metrics.RecordStoreOperation("create")
	store := model.Store{
		UserID:    req.UserID,
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		GSTNumber: req.GSTNumber,
	}
	if err := h.stores.Create(c.Request().Context(), &store); err != nil {
		log.Error("Failed to create store", zap.String("name", req.Name), zap.Error(err))
		if errors.Is(err, repository.ErrInvalidInput) || errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create store"})
	}

	log.Info("Store created successfully",
		zap.String("store_id", store.ID),
		zap.String("name", store.Name))
	return c.JSON(http.StatusCreated, syncapi.StoreResponse{Store: store.ToAPI()})
}
