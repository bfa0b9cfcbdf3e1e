package task

import (
	"context"
	"database/sql"
	"sync"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/generation"
	"github.com/converselab/converse-api/internal/store"
	"github.com/google/uuid"
)

// fakeTaskStore is an in-memory store.TaskStore that records every status
// transition it is asked to make.
type fakeTaskStore struct {
	mu sync.Mutex

	tasks map[uuid.UUID]*domain.Task

	markProcessingErr error
	markCompletedErr  error
	markFailedErr     error

	transitions []domain.TaskStatus
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore(tasks ...*domain.Task) *fakeTaskStore {
	s := &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	for _, t := range tasks {
		s.tasks[t.Token] = t
	}
	return s
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = int64(len(s.tasks) + 1)
	s.tasks[task.Token] = task
	return nil
}

func (s *fakeTaskStore) GetByToken(ctx context.Context, token uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[token]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) GetByTokenForUser(
	ctx context.Context,
	token uuid.UUID,
	userID int64,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[token]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) MarkProcessing(ctx context.Context, token uuid.UUID) error {
	return s.transition(token, domain.TaskStatusProcessing, "", "", s.markProcessingErr)
}

func (s *fakeTaskStore) MarkCompleted(ctx context.Context, token uuid.UUID, result string) error {
	return s.transition(token, domain.TaskStatusCompleted, result, "", s.markCompletedErr)
}

func (s *fakeTaskStore) MarkFailed(ctx context.Context, token uuid.UUID, errorMessage string) error {
	return s.transition(token, domain.TaskStatusFailed, "", errorMessage, s.markFailedErr)
}

func (s *fakeTaskStore) transition(
	token uuid.UUID,
	status domain.TaskStatus,
	result, errorMessage string,
	injected error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if injected != nil {
		return injected
	}

	t, ok := s.tasks[token]
	if !ok {
		return store.ErrTaskNotFound
	}

	t.Status = status
	if result != "" {
		t.Result = result
	}
	if errorMessage != "" {
		t.ErrorMessage = errorMessage
	}
	s.transitions = append(s.transitions, status)
	return nil
}

func (s *fakeTaskStore) status(token uuid.UUID) domain.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[token].Status
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeConversationStore serves a fixed set of conversations.
type fakeConversationStore struct {
	conversations map[int64]*domain.Conversation
}

var _ store.ConversationStore = (*fakeConversationStore)(nil)

func newFakeConversationStore(conversations ...*domain.Conversation) *fakeConversationStore {
	s := &fakeConversationStore{conversations: make(map[int64]*domain.Conversation)}
	for _, c := range conversations {
		s.conversations[c.ID] = c
	}
	return s
}

func (s *fakeConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	c.ID = int64(len(s.conversations) + 1)
	s.conversations[c.ID] = c
	return nil
}

func (s *fakeConversationStore) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return nil, store.ErrConversationNotFound
	}
	return c, nil
}

func (s *fakeConversationStore) GetByIDForUser(
	ctx context.Context,
	id, userID int64,
) (*domain.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrConversationNotFound
	}
	return c, nil
}

func (s *fakeConversationStore) ListByUser(
	ctx context.Context,
	userID int64,
) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range s.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) Delete(ctx context.Context, id, userID int64) error {
	c, ok := s.conversations[id]
	if !ok || c.UserID != userID {
		return store.ErrConversationNotFound
	}
	delete(s.conversations, id)
	return nil
}

func (s *fakeConversationStore) WithTx(tx *sql.Tx) store.ConversationStore { return s }

// fakeMessageStore records created messages in order.
type fakeMessageStore struct {
	mu sync.Mutex

	history   []*domain.Message
	created   []*domain.Message
	createErr error
	nextID    int64
}

var _ store.MessageStore = (*fakeMessageStore)(nil)

func (s *fakeMessageStore) Create(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	m.ID = s.nextID
	s.created = append(s.created, m)
	return nil
}

func (s *fakeMessageStore) ListByConversation(
	ctx context.Context,
	conversationID int64,
) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history, nil
}

func (s *fakeMessageStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

func (s *fakeMessageStore) WithTx(tx *sql.Tx) store.MessageStore { return s }

// fakeGenerator returns a canned reply or error, optionally running a hook
// before answering.
type fakeGenerator struct {
	reply  string
	err    error
	hook   func()
	called bool
}

var _ generation.Generator = (*fakeGenerator)(nil)

func (g *fakeGenerator) GenerateReply(
	ctx context.Context,
	message generation.Message,
	history []generation.Message,
) (string, error) {
	g.called = true
	if g.hook != nil {
		g.hook()
	}
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}
