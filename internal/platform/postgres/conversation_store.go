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

// ConversationStore implements the store.ConversationStore interface
// using a PostgreSQL database as the storage backend.
type ConversationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewConversationStore creates a new PostgreSQL implementation of the
// ConversationStore interface.
func NewConversationStore(db store.DBTX, logger *slog.Logger) *ConversationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ConversationStore{
		db:     db,
		logger: logger.With(slog.String("component", "conversation_store")),
	}
}

// Ensure ConversationStore implements store.ConversationStore interface
var _ store.ConversationStore = (*ConversationStore)(nil)

// Create implements store.ConversationStore.Create
func (s *ConversationStore) Create(ctx context.Context, conversation *domain.Conversation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := conversation.Validate(); err != nil {
		log.Warn("conversation validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("user_id", conversation.UserID))
		return err
	}

	query := `
		INSERT INTO conversations (user_id, title, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		conversation.UserID,
		conversation.Title,
		conversation.CreatedAt,
	).Scan(&conversation.ID)

	if err != nil {
		if err := mapForeignKeyViolation(err, "user", conversation.UserID); err != nil {
			log.Warn("foreign key violation during conversation creation",
				slog.String("error", err.Error()))
			return err
		}

		log.Error("failed to create conversation",
			slog.String("error", err.Error()),
			slog.Int64("user_id", conversation.UserID))
		return err
	}

	log.Info("conversation created successfully",
		slog.Int64("conversation_id", conversation.ID),
		slog.Int64("user_id", conversation.UserID))
	return nil
}

// GetByID implements store.ConversationStore.GetByID
func (s *ConversationStore) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	return s.getConversation(ctx, "WHERE id = $1", id)
}

// GetByIDForUser implements store.ConversationStore.GetByIDForUser
func (s *ConversationStore) GetByIDForUser(
	ctx context.Context,
	id, userID int64,
) (*domain.Conversation, error) {
	return s.getConversation(ctx, "WHERE id = $1 AND user_id = $2", id, userID)
}

func (s *ConversationStore) getConversation(
	ctx context.Context,
	where string,
	args ...any,
) (*domain.Conversation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, created_at
		FROM conversations ` + where

	var conversation domain.Conversation
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&conversation.ID,
		&conversation.UserID,
		&conversation.Title,
		&conversation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConversationNotFound
		}

		log.Error("failed to get conversation", slog.String("error", err.Error()))
		return nil, err
	}

	return &conversation, nil
}

// ListByUser implements store.ConversationStore.ListByUser
func (s *ConversationStore) ListByUser(
	ctx context.Context,
	userID int64,
) ([]*domain.Conversation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, created_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list conversations",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conversations []*domain.Conversation
	for rows.Next() {
		var conversation domain.Conversation
		if err := rows.Scan(
			&conversation.ID,
			&conversation.UserID,
			&conversation.Title,
			&conversation.CreatedAt,
		); err != nil {
			log.Error("failed to scan conversation row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, &conversation)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating conversation rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return conversations, nil
}

// Delete implements store.ConversationStore.Delete. Messages cascade via the
// schema foreign key.
func (s *ConversationStore) Delete(ctx context.Context, id, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM conversations WHERE id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete conversation",
			slog.Int64("conversation_id", id),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrConversationNotFound
	}

	log.Info("conversation deleted",
		slog.Int64("conversation_id", id),
		slog.Int64("user_id", userID))
	return nil
}

// WithTx implements store.ConversationStore.WithTx
func (s *ConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return &ConversationStore{
		db:     tx,
		logger: s.logger,
	}
}
