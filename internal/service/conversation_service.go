package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
)

// ConversationWithMessages pairs a conversation with its full message
// history, oldest message first.
type ConversationWithMessages struct {
	Conversation *domain.Conversation
	Messages     []*domain.Message
}

// ConversationService provides owner-scoped conversation operations.
type ConversationService interface {
	// CreateConversation creates a new conversation for the user.
	CreateConversation(ctx context.Context, userID int64, title string) (*domain.Conversation, error)

	// GetConversation retrieves one conversation with its messages.
	// Missing and foreign conversations both return store.ErrConversationNotFound.
	GetConversation(ctx context.Context, id, userID int64) (*ConversationWithMessages, error)

	// ListConversations retrieves the user's conversations, newest first,
	// each with its messages.
	ListConversations(ctx context.Context, userID int64) ([]*ConversationWithMessages, error)

	// DeleteConversation deletes a conversation and its messages.
	DeleteConversation(ctx context.Context, id, userID int64) error
}

// ConversationServiceImpl implements the ConversationService interface
type ConversationServiceImpl struct {
	conversationStore store.ConversationStore
	messageStore      store.MessageStore
	db                *sql.DB
	logger            *slog.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationStore store.ConversationStore,
	messageStore store.MessageStore,
	db *sql.DB,
	logger *slog.Logger,
) ConversationService {
	return &ConversationServiceImpl{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		db:                db,
		logger:            logger.With("component", "conversation_service"),
	}
}

// CreateConversation creates a new conversation for the user.
func (s *ConversationServiceImpl) CreateConversation(
	ctx context.Context,
	userID int64,
	title string,
) (*domain.Conversation, error) {
	conversation, err := domain.NewConversation(userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.conversationStore.WithTx(tx).Create(ctx, conversation)
	})
	if err != nil {
		s.logger.Error("failed to save conversation",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.Info("conversation created",
		"conversation_id", conversation.ID,
		"user_id", userID)
	return conversation, nil
}

// GetConversation retrieves one conversation with its messages.
func (s *ConversationServiceImpl) GetConversation(
	ctx context.Context,
	id, userID int64,
) (*ConversationWithMessages, error) {
	conversation, err := s.conversationStore.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Error("failed to retrieve conversation",
				"error", err,
				"conversation_id", id)
		}
		return nil, err
	}

	messages, err := s.messageStore.ListByConversation(ctx, id)
	if err != nil {
		s.logger.Error("failed to load conversation messages",
			"error", err,
			"conversation_id", id)
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &ConversationWithMessages{
		Conversation: conversation,
		Messages:     messages,
	}, nil
}

// ListConversations retrieves the user's conversations with their messages.
func (s *ConversationServiceImpl) ListConversations(
	ctx context.Context,
	userID int64,
) ([]*ConversationWithMessages, error) {
	conversations, err := s.conversationStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list conversations",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]*ConversationWithMessages, 0, len(conversations))
	for _, conversation := range conversations {
		messages, err := s.messageStore.ListByConversation(ctx, conversation.ID)
		if err != nil {
			s.logger.Error("failed to load conversation messages",
				"error", err,
				"conversation_id", conversation.ID)
			return nil, fmt.Errorf("failed to load messages: %w", err)
		}
		result = append(result, &ConversationWithMessages{
			Conversation: conversation,
			Messages:     messages,
		})
	}

	return result, nil
}

// DeleteConversation deletes a conversation and its messages.
func (s *ConversationServiceImpl) DeleteConversation(ctx context.Context, id, userID int64) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.conversationStore.WithTx(tx).Delete(ctx, id, userID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Error("failed to delete conversation",
				"error", err,
				"conversation_id", id)
		}
		return err
	}

	s.logger.Info("conversation deleted",
		"conversation_id", id,
		"user_id", userID)
	return nil
}
