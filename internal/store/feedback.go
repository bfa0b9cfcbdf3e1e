package store

import (
	"context"
	"database/sql"

	"github.com/converselab/converse-api/internal/domain"
)

// FeedbackStore defines the interface for feedback data persistence.
type FeedbackStore interface {
	// Create saves a new feedback entry and fills in the generated ID.
	Create(ctx context.Context, feedback *domain.Feedback) error

	// GetByID retrieves a feedback entry by its unique ID.
	// Returns ErrFeedbackNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Feedback, error)

	// ListByUser retrieves feedback entries for a user, newest first, with
	// limit/offset pagination. Also returns the total count for the user.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Feedback, int, error)

	// WithTx returns a new FeedbackStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) FeedbackStore
}
