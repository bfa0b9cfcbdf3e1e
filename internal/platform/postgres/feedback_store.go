package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/store"
)

// FeedbackStore implements the store.FeedbackStore interface
// using a PostgreSQL database as the storage backend.
type FeedbackStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFeedbackStore creates a new PostgreSQL implementation of the FeedbackStore interface.
func NewFeedbackStore(db store.DBTX, logger *slog.Logger) *FeedbackStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &FeedbackStore{
		db:     db,
		logger: logger.With(slog.String("component", "feedback_store")),
	}
}

// Ensure FeedbackStore implements store.FeedbackStore interface
var _ store.FeedbackStore = (*FeedbackStore)(nil)

// Create implements store.FeedbackStore.Create
func (s *FeedbackStore) Create(ctx context.Context, feedback *domain.Feedback) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := feedback.Validate(); err != nil {
		log.Warn("feedback validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("user_id", feedback.UserID))
		return err
	}

	query := `
		INSERT INTO feedback (user_id, feedback_type, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		feedback.UserID,
		feedback.Type,
		feedback.Content,
		feedback.Status,
		feedback.CreatedAt,
	).Scan(&feedback.ID)

	if err != nil {
		if err := mapForeignKeyViolation(err, "user", feedback.UserID); err != nil {
			return err
		}

		log.Error("failed to create feedback",
			slog.String("error", err.Error()),
			slog.Int64("user_id", feedback.UserID))
		return err
	}

	log.Info("feedback created",
		slog.Int64("feedback_id", feedback.ID),
		slog.Int64("user_id", feedback.UserID))
	return nil
}

// GetByID implements store.FeedbackStore.GetByID
func (s *FeedbackStore) GetByID(ctx context.Context, id int64) (*domain.Feedback, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, feedback_type, content, status, created_at
		FROM feedback
		WHERE id = $1
	`

	var feedback domain.Feedback
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&feedback.ID,
		&feedback.UserID,
		&feedback.Type,
		&feedback.Content,
		&feedback.Status,
		&feedback.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFeedbackNotFound
		}

		log.Error("failed to get feedback", slog.String("error", err.Error()))
		return nil, err
	}

	return &feedback, nil
}

// ListByUser implements store.FeedbackStore.ListByUser
func (s *FeedbackStore) ListByUser(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]*domain.Feedback, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	countQuery := `SELECT count(*) FROM feedback WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		log.Error("failed to count feedback", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	query := `
		SELECT id, user_id, feedback_type, content, status, created_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list feedback", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.UserID,
			&feedback.Type,
			&feedback.Content,
			&feedback.Status,
			&feedback.CreatedAt,
		); err != nil {
			log.Error("failed to scan feedback row", slog.String("error", err.Error()))
			return nil, 0, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		items = append(items, &feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating feedback rows: %w", err)
	}

	return items, total, nil
}

// WithTx implements store.FeedbackStore.WithTx
func (s *FeedbackStore) WithTx(tx *sql.Tx) store.FeedbackStore {
	return &FeedbackStore{
		db:     tx,
		logger: s.logger,
	}
}
