package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/store"
)

// MessageStore implements the store.MessageStore interface
// using a PostgreSQL database as the storage backend.
type MessageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMessageStore creates a new PostgreSQL implementation of the MessageStore interface.
func NewMessageStore(db store.DBTX, logger *slog.Logger) *MessageStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MessageStore{
		db:     db,
		logger: logger.With(slog.String("component", "message_store")),
	}
}

// Ensure MessageStore implements store.MessageStore interface
var _ store.MessageStore = (*MessageStore)(nil)

// Create implements store.MessageStore.Create. The database assigns the row
// ID and the authoritative creation time, both written back to the message.
func (s *MessageStore) Create(ctx context.Context, message *domain.Message) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := message.Validate(); err != nil {
		log.Warn("message validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("conversation_id", message.ConversationID))
		return err
	}

	query := `
		INSERT INTO messages (conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		message.ConversationID,
		message.Role,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		if err := mapForeignKeyViolation(err, "conversation", message.ConversationID); err != nil {
			log.Warn("foreign key violation during message creation",
				slog.String("error", err.Error()))
			return err
		}

		log.Error("failed to create message",
			slog.String("error", err.Error()),
			slog.Int64("conversation_id", message.ConversationID),
			slog.String("role", string(message.Role)))
		return err
	}

	log.Debug("message created",
		slog.Int64("message_id", message.ID),
		slog.Int64("conversation_id", message.ConversationID),
		slog.String("role", string(message.Role)))
	return nil
}

// ListByConversation implements store.MessageStore.ListByConversation.
// Messages come back oldest first; the row ID breaks creation-time ties so
// context assembly is deterministic.
func (s *MessageStore) ListByConversation(
	ctx context.Context,
	conversationID int64,
) ([]*domain.Message, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		log.Error("failed to list messages",
			slog.Int64("conversation_id", conversationID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			log.Error("failed to scan message row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating message rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// WithTx implements store.MessageStore.WithTx
func (s *MessageStore) WithTx(tx *sql.Tx) store.MessageStore {
	return &MessageStore{
		db:     tx,
		logger: s.logger,
	}
}
