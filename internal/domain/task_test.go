package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("new task starts pending with a fresh token", func(t *testing.T) {
		task, err := NewTask(1)
		require.NoError(t, err)

		assert.Equal(t, TaskStatusPending, task.Status)
		assert.NotEqual(t, uuid.Nil, task.Token)
		assert.Zero(t, task.ID)
		assert.Empty(t, task.Result)
		assert.Empty(t, task.ErrorMessage)
	})

	t.Run("tokens are unique per task", func(t *testing.T) {
		a, err := NewTask(1)
		require.NoError(t, err)
		b, err := NewTask(1)
		require.NoError(t, err)
		assert.NotEqual(t, a.Token, b.Token)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		_, err := NewTask(0)
		assert.ErrorIs(t, err, ErrEmptyTaskUserID)
	})
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Task {
		return &Task{UserID: 1, Token: uuid.New(), Status: TaskStatusProcessing}
	}

	t.Run("valid task", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("nil token", func(t *testing.T) {
		task := valid()
		task.Token = uuid.Nil
		assert.ErrorIs(t, task.Validate(), ErrEmptyTaskToken)
	})

	t.Run("unknown status", func(t *testing.T) {
		task := valid()
		task.Status = TaskStatus("queued")
		assert.ErrorIs(t, task.Validate(), ErrInvalidTaskStatus)
	})
}

func TestTaskIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, (&Task{Status: TaskStatusPending}).IsTerminal())
	assert.False(t, (&Task{Status: TaskStatusProcessing}).IsTerminal())
	assert.True(t, (&Task{Status: TaskStatusCompleted}).IsTerminal())
	assert.True(t, (&Task{Status: TaskStatusFailed}).IsTerminal())
}
