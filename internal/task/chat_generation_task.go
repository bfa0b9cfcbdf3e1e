package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/generation"
	"github.com/converselab/converse-api/internal/store"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilDB                = errors.New("db cannot be nil")
	ErrNilTaskStore         = errors.New("task store cannot be nil")
	ErrNilConversationStore = errors.New("conversation store cannot be nil")
	ErrNilMessageStore      = errors.New("message store cannot be nil")
	ErrNilGenerator         = errors.New("generator cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptyToken           = errors.New("task token cannot be empty")
)

// ChatGenerationTask is the executor for one sent message: it owns the task
// row identified by its token and drives it through
// pending -> processing -> {completed | failed}.
//
// All durable writes are the executor's alone; nothing else mutates the task
// row while it runs.
type ChatGenerationTask struct {
	token          uuid.UUID
	conversationID int64
	userText       string
	db             *sql.DB
	tasks          store.TaskStore
	conversations  store.ConversationStore
	messages       store.MessageStore
	generator      generation.Generator
	logger         *slog.Logger
}

var _ Task = (*ChatGenerationTask)(nil)

// NewChatGenerationTask creates the executor for the task identified by
// token. The task row must already exist (the gateway creates it before
// submission).
func NewChatGenerationTask(
	token uuid.UUID,
	conversationID int64,
	userText string,
	db *sql.DB,
	tasks store.TaskStore,
	conversations store.ConversationStore,
	messages store.MessageStore,
	generator generation.Generator,
	logger *slog.Logger,
) (*ChatGenerationTask, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if tasks == nil {
		return nil, ErrNilTaskStore
	}
	if conversations == nil {
		return nil, ErrNilConversationStore
	}
	if messages == nil {
		return nil, ErrNilMessageStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if token == uuid.Nil {
		return nil, ErrEmptyToken
	}

	return &ChatGenerationTask{
		token:          token,
		conversationID: conversationID,
		userText:       userText,
		db:             db,
		tasks:          tasks,
		conversations:  conversations,
		messages:       messages,
		generator:      generator,
		logger: logger.With(
			"task_type", TaskTypeChatGeneration,
			"task_token", token,
			"conversation_id", conversationID,
		),
	}, nil
}

// Token returns the task's externally visible identifier.
func (t *ChatGenerationTask) Token() uuid.UUID {
	return t.token
}

// Type returns the task type identifier.
func (t *ChatGenerationTask) Type() string {
	return TaskTypeChatGeneration
}

// Execute runs the chat generation lifecycle. The task is marked processing
// before any slow work so pollers see progress immediately; any error (or
// panic) in the body is caught once here and recorded as a failed task.
func (t *ChatGenerationTask) Execute(ctx context.Context) (err error) {
	// Defensive check: if the row was never durably created there is nothing
	// to transition, so log and abort without retrying.
	if _, err := t.tasks.GetByToken(ctx, t.token); err != nil {
		t.logger.Error("task not found, aborting", "error", err)
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
		if err != nil {
			t.recordFailure(ctx, err)
		}
	}()

	if err := t.tasks.MarkProcessing(ctx, t.token); err != nil {
		return fmt.Errorf("failed to mark task processing: %w", err)
	}

	t.logger.Info("task started processing")

	return t.run(ctx)
}

// run is the task body: everything between the processing transition and the
// terminal state.
func (t *ChatGenerationTask) run(ctx context.Context) error {
	// 1. The target conversation must exist.
	if _, err := t.conversations.GetByID(ctx, t.conversationID); err != nil {
		return fmt.Errorf("conversation %d not found: %w", t.conversationID, err)
	}

	// 2. Prior turns, oldest first, become the model context.
	prior, err := t.messages.ListByConversation(ctx, t.conversationID)
	if err != nil {
		return fmt.Errorf("failed to load conversation history: %w", err)
	}

	history := make([]generation.Message, 0, len(prior))
	for _, msg := range prior {
		history = append(history, generation.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	// 3. Persist the user's turn before the model call, so it survives a
	// generation failure.
	userMessage, err := domain.NewMessage(t.conversationID, domain.RoleUser, t.userText)
	if err != nil {
		return fmt.Errorf("invalid user message: %w", err)
	}
	if err := t.messages.Create(ctx, userMessage); err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}

	// 4. One blocking generation call; the client enforces its own long timeout.
	reply, err := t.generator.GenerateReply(
		ctx,
		generation.Message{Role: string(domain.RoleUser), Content: t.userText},
		history,
	)
	if err != nil {
		return fmt.Errorf("failed to generate reply: %w", err)
	}

	// 5+6. The assistant turn and the completed status commit together: the
	// stored result references the assistant message's id.
	err = store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		assistantMessage, err := domain.NewMessage(t.conversationID, domain.RoleAssistant, reply)
		if err != nil {
			return fmt.Errorf("invalid assistant message: %w", err)
		}

		if err := t.messages.WithTx(tx).Create(ctx, assistantMessage); err != nil {
			return fmt.Errorf("failed to save assistant message: %w", err)
		}

		result, err := json.Marshal(domain.TaskResult{
			MessageID: assistantMessage.ID,
			Content:   reply,
		})
		if err != nil {
			return fmt.Errorf("failed to encode task result: %w", err)
		}

		return t.tasks.WithTx(tx).MarkCompleted(ctx, t.token, string(result))
	})
	if err != nil {
		return err
	}

	t.logger.Info("task completed", "reply_length", len(reply))
	return nil
}

// recordFailure writes the terminal failed status. It goes through the
// pooled connection rather than anything used by the failed body, so a
// broken session cannot poison the failure record. If this write fails too,
// the error is logged and swallowed and the task stays processing forever.
func (t *ChatGenerationTask) recordFailure(ctx context.Context, cause error) {
	t.logger.Error("task failed", "error", cause)

	if err := t.tasks.MarkFailed(ctx, t.token, cause.Error()); err != nil {
		t.logger.Error("failed to record task failure, task will remain processing",
			"error", err,
			"cause", cause)
	}
}
