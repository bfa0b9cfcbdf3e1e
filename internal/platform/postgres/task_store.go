package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/platform/logger"
	"github.com/converselab/converse-api/internal/store"
	"github.com/google/uuid"
)

// TaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_token", task.Token.String()))
		return err
	}

	query := `
		INSERT INTO tasks (user_id, token, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Token,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		if err := mapForeignKeyViolation(err, "user", task.UserID); err != nil {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_token", task.Token.String()))
			return err
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_token", task.Token.String()),
			slog.Int64("user_id", task.UserID))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_token", task.Token.String()),
		slog.Int64("user_id", task.UserID))
	return nil
}

// GetByToken implements store.TaskStore.GetByToken
func (s *TaskStore) GetByToken(ctx context.Context, token uuid.UUID) (*domain.Task, error) {
	return s.getTask(ctx, "WHERE token = $1", token)
}

// GetByTokenForUser implements store.TaskStore.GetByTokenForUser.
// A token owned by a different user yields the same ErrTaskNotFound as an
// unknown token.
func (s *TaskStore) GetByTokenForUser(
	ctx context.Context,
	token uuid.UUID,
	userID int64,
) (*domain.Task, error) {
	return s.getTask(ctx, "WHERE token = $1 AND user_id = $2", token, userID)
}

// getTask is the shared lookup for the token-keyed getters.
func (s *TaskStore) getTask(ctx context.Context, where string, args ...any) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, token, status, result, error_message, created_at, updated_at
		FROM tasks ` + where

	var task domain.Task
	var result, errorMessage sql.NullString

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&task.ID,
		&task.UserID,
		&task.Token,
		&task.Status,
		&result,
		&errorMessage,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}

		log.Error("failed to get task", slog.String("error", err.Error()))
		return nil, err
	}

	task.Result = result.String
	task.ErrorMessage = errorMessage.String

	return &task, nil
}

// MarkProcessing implements store.TaskStore.MarkProcessing
func (s *TaskStore) MarkProcessing(ctx context.Context, token uuid.UUID) error {
	return s.updateStatus(ctx, token, domain.TaskStatusProcessing, nil, nil)
}

// MarkCompleted implements store.TaskStore.MarkCompleted
func (s *TaskStore) MarkCompleted(ctx context.Context, token uuid.UUID, result string) error {
	return s.updateStatus(ctx, token, domain.TaskStatusCompleted, &result, nil)
}

// MarkFailed implements store.TaskStore.MarkFailed
func (s *TaskStore) MarkFailed(ctx context.Context, token uuid.UUID, errorMessage string) error {
	return s.updateStatus(ctx, token, domain.TaskStatusFailed, nil, &errorMessage)
}

// updateStatus writes a status transition as its own single-statement commit,
// bumping updated_at. Result and error columns are only touched when the
// transition provides them.
func (s *TaskStore) updateStatus(
	ctx context.Context,
	token uuid.UUID,
	status domain.TaskStatus,
	result *string,
	errorMessage *string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1,
		    result = COALESCE($2, result),
		    error_message = COALESCE($3, error_message),
		    updated_at = $4
		WHERE token = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		status,
		result,
		errorMessage,
		time.Now().UTC(),
		token,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_token", token.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("task_token", token.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found with token to update status",
			slog.String("task_token", token.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task status updated",
		slog.String("task_token", token.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{
		db:     tx,
		logger: s.logger,
	}
}
