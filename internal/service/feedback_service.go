package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
)

// FeedbackService provides user feedback submission and review.
type FeedbackService interface {
	// CreateFeedback records a new feedback entry with status pending.
	CreateFeedback(ctx context.Context, userID int64, feedbackType, content string) (*domain.Feedback, error)

	// ListFeedback retrieves the user's feedback, newest first, with the
	// total count for pagination.
	ListFeedback(ctx context.Context, userID int64, limit, offset int) ([]*domain.Feedback, int, error)

	// GetFeedback retrieves one feedback entry. Feedback owned by another
	// user returns ErrNotOwned.
	GetFeedback(ctx context.Context, id, userID int64) (*domain.Feedback, error)
}

// FeedbackServiceImpl implements the FeedbackService interface
type FeedbackServiceImpl struct {
	feedbackStore store.FeedbackStore
	db            *sql.DB
	logger        *slog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackStore store.FeedbackStore,
	db *sql.DB,
	logger *slog.Logger,
) FeedbackService {
	return &FeedbackServiceImpl{
		feedbackStore: feedbackStore,
		db:            db,
		logger:        logger.With("component", "feedback_service"),
	}
}

// CreateFeedback records a new feedback entry.
func (s *FeedbackServiceImpl) CreateFeedback(
	ctx context.Context,
	userID int64,
	feedbackType, content string,
) (*domain.Feedback, error) {
	feedback, err := domain.NewFeedback(userID, feedbackType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.feedbackStore.WithTx(tx).Create(ctx, feedback)
	})
	if err != nil {
		s.logger.Error("failed to save feedback",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.logger.Info("feedback created",
		"feedback_id", feedback.ID,
		"user_id", userID,
		"type", feedbackType)
	return feedback, nil
}

// ListFeedback retrieves the user's feedback, newest first.
func (s *FeedbackServiceImpl) ListFeedback(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]*domain.Feedback, int, error) {
	items, total, err := s.feedbackStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list feedback",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	return items, total, nil
}

// GetFeedback retrieves one feedback entry with an ownership check.
func (s *FeedbackServiceImpl) GetFeedback(
	ctx context.Context,
	id, userID int64,
) (*domain.Feedback, error) {
	feedback, err := s.feedbackStore.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrFeedbackNotFound) {
			s.logger.Error("failed to retrieve feedback",
				"error", err,
				"feedback_id", id)
		}
		return nil, err
	}

	if feedback.UserID != userID {
		s.logger.Debug("feedback access denied",
			"feedback_id", id,
			"owner_id", feedback.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	return feedback, nil
}
