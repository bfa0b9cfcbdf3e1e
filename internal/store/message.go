package store

import (
	"context"
	"database/sql"

	"github.com/converselab/converse-api/internal/domain"
)

// MessageStore defines the interface for message data persistence.
type MessageStore interface {
	// Create appends a message to its conversation and fills in the generated
	// ID and authoritative creation time.
	Create(ctx context.Context, message *domain.Message) error

	// ListByConversation retrieves all messages for a conversation ordered by
	// creation time ascending (row ID as tiebreak).
	ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error)

	// WithTx returns a new MessageStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MessageStore
}
