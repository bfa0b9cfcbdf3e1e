package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/converselab/converse-api/internal/domain"
	"github.com/converselab/converse-api/internal/generation"
	"github.com/converselab/converse-api/internal/store"
	"github.com/converselab/converse-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowGenerator blocks until released, to prove the send path never waits
// on generation.
type slowGenerator struct {
	release chan struct{}
}

func (g *slowGenerator) GenerateReply(
	ctx context.Context,
	message generation.Message,
	history []generation.Message,
) (string, error) {
	<-g.release
	return "late reply", nil
}

type messageServiceFixture struct {
	tasks         *fakeTaskStore
	conversations *fakeConversationStore
	submitter     *fakeSubmitter
	mock          sqlmock.Sqlmock
	service       MessageService
}

func newMessageServiceFixture(t *testing.T) *messageServiceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tasks := newFakeTaskStore()
	conversations := newFakeConversationStore(
		&domain.Conversation{ID: 1, UserID: 1, Title: "mine"},
		&domain.Conversation{ID: 2, UserID: 2, Title: "theirs"},
	)
	messages := &fakeMessageStore{}
	submitter := &fakeSubmitter{}

	factory := task.NewChatTaskFactory(
		db, tasks, conversations, messages,
		&slowGenerator{release: make(chan struct{})},
		testLogger(),
	)

	return &messageServiceFixture{
		tasks:         tasks,
		conversations: conversations,
		submitter:     submitter,
		mock:          mock,
		service: NewMessageService(
			tasks, conversations, factory, submitter, db, testLogger(),
		),
	}
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns pending task immediately without waiting on generation", func(t *testing.T) {
		f := newMessageServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		start := time.Now()
		created, err := f.service.SendMessage(context.Background(), 1, 1, "hello")
		require.NoError(t, err)

		// The generator blocks forever; a bounded elapsed time proves the
		// synchronous path never touched it.
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, domain.TaskStatusPending, created.Status)
		assert.NotZero(t, created.Token)

		require.Len(t, f.submitter.submitted, 1)
		assert.Equal(t, created.Token, f.submitter.submitted[0].Token())
	})

	t.Run("task row is durable before submission", func(t *testing.T) {
		f := newMessageServiceFixture(t)
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		created, err := f.service.SendMessage(context.Background(), 1, 1, "hello")
		require.NoError(t, err)

		stored, err := f.tasks.GetByToken(context.Background(), created.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, stored.Status)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		_, err := f.service.SendMessage(context.Background(), 1, 1, "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
		assert.Empty(t, f.submitter.submitted)
	})

	t.Run("missing conversation returns not found", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		_, err := f.service.SendMessage(context.Background(), 1, 99, "hello")
		assert.ErrorIs(t, err, store.ErrConversationNotFound)
	})

	t.Run("foreign conversation returns not found", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		_, err := f.service.SendMessage(context.Background(), 1, 2, "hello")
		assert.ErrorIs(t, err, store.ErrConversationNotFound)
		assert.Empty(t, f.submitter.submitted)
	})

	t.Run("submit failure marks the task failed", func(t *testing.T) {
		f := newMessageServiceFixture(t)
		f.submitter.err = errors.New("task queue is full")
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		_, err := f.service.SendMessage(context.Background(), 1, 1, "hello")
		require.Error(t, err)
		require.Len(t, f.tasks.failed, 1)
		assert.Contains(t, f.tasks.failed[0], "queue is full")
	})
}

func TestGetTaskStatus(t *testing.T) {
	t.Parallel()

	t.Run("returns the owner's task", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		owned, err := domain.NewTask(1)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), owned))

		got, err := f.service.GetTaskStatus(context.Background(), owned.Token, 1)
		require.NoError(t, err)
		assert.Equal(t, owned.Token, got.Token)
	})

	t.Run("terminal task reads the same on every poll", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		done, err := domain.NewTask(1)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), done))
		require.NoError(t, f.tasks.MarkCompleted(
			context.Background(), done.Token, `{"message_id":12,"content":"General Kenobi."}`,
		))

		first, err := f.service.GetTaskStatus(context.Background(), done.Token, 1)
		require.NoError(t, err)
		require.Equal(t, domain.TaskStatusCompleted, first.Status)
		require.Equal(t, `{"message_id":12,"content":"General Kenobi."}`, first.Result)

		second, err := f.service.GetTaskStatus(context.Background(), done.Token, 1)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, first.Result, second.Result)
	})

	t.Run("foreign task is indistinguishable from absent", func(t *testing.T) {
		f := newMessageServiceFixture(t)

		foreign, err := domain.NewTask(2)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), foreign))

		_, err = f.service.GetTaskStatus(context.Background(), foreign.Token, 1)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
