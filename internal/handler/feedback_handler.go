package handler

import (
	"errors"
	"net/http"

	"pos-service/internal/middleware"
	"pos-service/internal/model"
	"pos-service/internal/repository"
	"pos-service/pkg/logger"
	"pos-service/pkg/syncapi"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	feedback repository.FeedbackRepository
}

func NewFeedbackHandler(feedback repository.FeedbackRepository) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// CreateFeedback handles POST /api/feedback
func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	log := logger.FromContext(c)

	var req syncapi.FeedbackRequest
	if err := bindAndValidate(c, &req); err != nil {
		log.Warn("Invalid feedback request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.UserID == "" {
		req.UserID, _ = middleware.GetUserIDFromContext(c)
	}
	if err := requireOwner(c, req.UserID); err != nil {
		return err
	}

	feedback := model.Feedback{
		UserID:  req.UserID,
		Rating:  req.Rating,
		Message: req.Message,
	}
	if err := h.feedback.Create(c.Request().Context(), &feedback); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to save feedback", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to save feedback"})
	}

	log.Info("Feedback received", zap.Int("rating", feedback.Rating))
	return c.JSON(http.StatusCreated, echo.Map{"feedback": feedback})
}

// ListFeedback handles GET /api/feedback/:userId
func (h *FeedbackHandler) ListFeedback(c echo.Context) error {
	userID := c.Param("userId")
	if err := requireOwner(c, userID); err != nil {
		return err
	}

	list, err := h.feedback.ListByUser(c.Request().Context(), userID)
	if err != nil {
		logger.FromContext(c).Error("Failed to list feedback", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve feedback"})
	}
	return c.JSON(http.StatusOK, echo.Map{"feedback": list})
}
