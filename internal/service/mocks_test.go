package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/store"
	"github.com/converselab/converse-api/internal/task"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*domain.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

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
	history []*domain.Message
	created []*domain.Message
	nextID  int64
}

var _ store.MessageStore = (*fakeMessageStore)(nil)

func (s *fakeMessageStore) Create(ctx context.Context, m *domain.Message) error {
	s.nextID++
	m.ID = s.nextID
	s.created = append(s.created, m)
	return nil
}

func (s *fakeMessageStore) ListByConversation(
	ctx context.Context,
	conversationID int64,
) ([]*domain.Message, error) {
	return s.history, nil
}

func (s *fakeMessageStore) WithTx(tx *sql.Tx) store.MessageStore { return s }

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*domain.Task
	createErr error
	failed    []string
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	t.ID = int64(len(s.tasks) + 1)
	s.tasks[t.Token] = t
	return nil
}

func (s *fakeTaskStore) GetByToken(ctx context.Context, token uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[token]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t, nil
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
	return t, nil
}

func (s *fakeTaskStore) MarkProcessing(ctx context.Context, token uuid.UUID) error {
	return s.setStatus(token, domain.TaskStatusProcessing)
}

func (s *fakeTaskStore) MarkCompleted(ctx context.Context, token uuid.UUID, result string) error {
	s.mu.Lock()
	if t, ok := s.tasks[token]; ok {
		t.Result = result
	}
	s.mu.Unlock()
	return s.setStatus(token, domain.TaskStatusCompleted)
}

func (s *fakeTaskStore) MarkFailed(ctx context.Context, token uuid.UUID, errorMessage string) error {
	s.mu.Lock()
	s.failed = append(s.failed, errorMessage)
	if t, ok := s.tasks[token]; ok {
		t.ErrorMessage = errorMessage
	}
	s.mu.Unlock()
	return s.setStatus(token, domain.TaskStatusFailed)
}

func (s *fakeTaskStore) setStatus(token uuid.UUID, status domain.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[token]
	if !ok {
		return store.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeSubmitter records submitted tasks without executing them.
type fakeSubmitter struct {
	submitted []task.Task
	err       error
}

var _ task.Submitter = (*fakeSubmitter)(nil)

func (s *fakeSubmitter) Submit(ctx context.Context, t task.Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, t)
	return nil
}
