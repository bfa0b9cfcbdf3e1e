package domain

import (
	"errors"
	"time"
)

// FeedbackStatus tracks how far a feedback entry has moved through triage.
type FeedbackStatus string

// Possible feedback status values
const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

// Common validation errors for Feedback
var (
	ErrEmptyFeedbackUserID  = errors.New("feedback user ID cannot be empty")
	ErrEmptyFeedbackType    = errors.New("feedback type cannot be empty")
	ErrEmptyFeedbackContent = errors.New("feedback content cannot be empty")
	ErrInvalidFeedbackState = errors.New("invalid feedback status")
)

// Feedback is a user-submitted report (bug, suggestion, other).
type Feedback struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Type      string         `json:"feedback_type"`
	Content   string         `json:"content"`
	Status    FeedbackStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewFeedback creates a new pending Feedback entry for the given user.
func NewFeedback(userID int64, feedbackType, content string) (*Feedback, error) {
	feedback := &Feedback{
		UserID:    userID,
		Type:      feedbackType,
		Content:   content,
		Status:    FeedbackStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	return feedback, nil
}

// Validate checks if the Feedback has valid data.
func (f *Feedback) Validate() error {
	if f.UserID <= 0 {
		return ErrEmptyFeedbackUserID
	}

	if f.Type == "" {
		return ErrEmptyFeedbackType
	}

	if f.Content == "" {
		return ErrEmptyFeedbackContent
	}

	switch f.Status {
	case FeedbackStatusPending, FeedbackStatusReviewed, FeedbackStatusResolved:
	default:
		return ErrInvalidFeedbackState
	}

	return nil
}
