package task

import (
	"database/sql"
	"log/slog"

	"github.com/converselab/converse-api/internal/generation"
	"github.com/converselab/converse-api/internal/store"
	"github.com/google/uuid"
)

// ChatTaskFactory creates ChatGenerationTask instances with all their
// dependencies wired in, so callers only supply the per-request parameters.
type ChatTaskFactory struct {
	db            *sql.DB
	tasks         store.TaskStore
	conversations store.ConversationStore
	messages      store.MessageStore
	generator     generation.Generator
	logger        *slog.Logger
}

// NewChatTaskFactory creates a factory for chat generation tasks.
func NewChatTaskFactory(
	db *sql.DB,
	tasks store.TaskStore,
	conversations store.ConversationStore,
	messages store.MessageStore,
	generator generation.Generator,
	logger *slog.Logger,
) *ChatTaskFactory {
	return &ChatTaskFactory{
		db:            db,
		tasks:         tasks,
		conversations: conversations,
		messages:      messages,
		generator:     generator,
		logger:        logger,
	}
}

// NewTask creates a ChatGenerationTask for the given task token. The task
// row for token must already be persisted.
func (f *ChatTaskFactory) NewTask(token uuid.UUID, conversationID int64, userText string) (*ChatGenerationTask, error) {
	return NewChatGenerationTask(
		token,
		conversationID,
		userText,
		f.db,
		f.tasks,
		f.conversations,
		f.messages,
		f.generator,
		f.logger,
	)
}
