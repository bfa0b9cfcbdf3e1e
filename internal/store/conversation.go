package store

import (
	"context"
	"database/sql"

	"github.com/converselab/converse-api/internal/domain"
)

// ConversationStore defines the interface for conversation data persistence.
type ConversationStore interface {
	// Create saves a new conversation and fills in the generated ID.
	Create(ctx context.Context, conversation *domain.Conversation) error

	// GetByID retrieves a conversation by its unique ID.
	// Returns ErrConversationNotFound if the conversation does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Conversation, error)

	// GetByIDForUser retrieves a conversation only if it belongs to the given
	// user. A conversation owned by someone else is reported identically to
	// one that does not exist (ErrConversationNotFound).
	GetByIDForUser(ctx context.Context, id, userID int64) (*domain.Conversation, error)

	// ListByUser retrieves all conversations owned by the given user,
	// newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Conversation, error)

	// Delete removes a conversation owned by the given user along with its
	// messages. Returns ErrConversationNotFound if absent or foreign.
	Delete(ctx context.Context, id, userID int64) error

	// WithTx returns a new ConversationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ConversationStore
}
