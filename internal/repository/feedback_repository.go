package repository

import (
	"context"
	"fmt"

	"pos-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepo) ListByUser(ctx context.Context, userID string) ([]model.Feedback, error) {
	feedback := []model.Feedback{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}
