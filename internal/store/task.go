package store

import (
	"context"
	"database/sql"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/google/uuid"
)

// TaskStore defines the interface for persisting asynchronous tasks.
// Every status write bumps the task's updated_at timestamp. Task rows are
// never deleted by this interface; retention is out of scope.
type TaskStore interface {
	// Create saves a new pending task and fills in the generated row ID.
	Create(ctx context.Context, task *domain.Task) error

	// GetByToken retrieves a task by its externally-visible token.
	// Returns ErrTaskNotFound if no task with that token exists.
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.Task, error)

	// GetByTokenForUser retrieves a task only if it belongs to the given
	// user. A task owned by someone else is reported identically to one that
	// does not exist (ErrTaskNotFound), to avoid existence leakage.
	GetByTokenForUser(ctx context.Context, token uuid.UUID, userID int64) (*domain.Task, error)

	// MarkProcessing transitions a task to the processing status.
	MarkProcessing(ctx context.Context, token uuid.UUID) error

	// MarkCompleted transitions a task to the completed status and stores the
	// JSON-encoded result payload.
	MarkCompleted(ctx context.Context, token uuid.UUID, result string) error

	// MarkFailed transitions a task to the failed status and stores the
	// human-readable failure description.
	MarkFailed(ctx context.Context, token uuid.UUID, errorMessage string) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
