package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
	"github.com/converselab/converse-api/internal/task"
	"github.com/google/uuid"
)

// MessageService is the gateway for asynchronous message sends: it creates
// the durable task row, hands the executor to the runner, and answers status
// polls. The synchronous path never waits on generation.
type MessageService interface {
	// SendMessage accepts a message for the given conversation and returns
	// the pending task tracking its generation. The conversation must belong
	// to userID; missing or foreign conversations both return
	// store.ErrConversationNotFound.
	SendMessage(ctx context.Context, userID, conversationID int64, content string) (*domain.Task, error)

	// GetTaskStatus returns the current state of a task. Absent tokens and
	// tokens owned by other users both return store.ErrTaskNotFound.
	GetTaskStatus(ctx context.Context, token uuid.UUID, userID int64) (*domain.Task, error)
}

// MessageServiceImpl implements the MessageService interface
type MessageServiceImpl struct {
	taskStore         store.TaskStore
	conversationStore store.ConversationStore
	taskFactory       *task.ChatTaskFactory
	submitter         task.Submitter
	db                *sql.DB
	logger            *slog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	taskStore store.TaskStore,
	conversationStore store.ConversationStore,
	taskFactory *task.ChatTaskFactory,
	submitter task.Submitter,
	db *sql.DB,
	logger *slog.Logger,
) MessageService {
	return &MessageServiceImpl{
		taskStore:         taskStore,
		conversationStore: conversationStore,
		taskFactory:       taskFactory,
		submitter:         submitter,
		db:                db,
		logger:            logger.With("component", "message_service"),
	}
}

// SendMessage persists a pending task for the message and submits its
// executor. The task row commits before submission so a poll racing the
// worker always finds it.
func (s *MessageServiceImpl) SendMessage(
	ctx context.Context,
	userID, conversationID int64,
	content string,
) (*domain.Task, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	// Ownership check happens synchronously so the caller gets a 404 now,
	// not a failed task later.
	if _, err := s.conversationStore.GetByIDForUser(ctx, conversationID, userID); err != nil {
		if !errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Error("failed to verify conversation ownership",
				"error", err,
				"conversation_id", conversationID,
				"user_id", userID)
		}
		return nil, err
	}

	newTask, err := domain.NewTask(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, newTask)
	})
	if err != nil {
		s.logger.Error("failed to save task",
			"error", err,
			"conversation_id", conversationID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	executor, err := s.taskFactory.NewTask(newTask.Token, conversationID, content)
	if err != nil {
		s.markSubmitFailure(ctx, newTask.Token, err)
		return nil, fmt.Errorf("failed to build task executor: %w", err)
	}

	if err := s.submitter.Submit(ctx, executor); err != nil {
		s.markSubmitFailure(ctx, newTask.Token, err)
		return nil, fmt.Errorf("failed to submit task: %w", err)
	}

	s.logger.Info("message task submitted",
		"task_token", newTask.Token,
		"conversation_id", conversationID,
		"user_id", userID)

	return newTask, nil
}

// GetTaskStatus returns the task as the owner sees it.
func (s *MessageServiceImpl) GetTaskStatus(
	ctx context.Context,
	token uuid.UUID,
	userID int64,
) (*domain.Task, error) {
	foundTask, err := s.taskStore.GetByTokenForUser(ctx, token, userID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Error("failed to retrieve task",
				"error", err,
				"task_token", token)
		}
		return nil, err
	}
	return foundTask, nil
}

// markSubmitFailure records a failed status for a task that never reached
// the queue. Best effort: if the write fails the task stays pending.
func (s *MessageServiceImpl) markSubmitFailure(ctx context.Context, token uuid.UUID, cause error) {
	if err := s.taskStore.MarkFailed(ctx, token, cause.Error()); err != nil {
		s.logger.Error("failed to record task submit failure",
			"error", err,
			"task_token", token,
			"cause", cause)
	}
}
