package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of an asynchronous task.
type TaskStatus string

// Possible task status values. Transitions are monotonic along
// pending -> processing -> {completed | failed}; completed and failed
// are terminal.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskUserID = errors.New("task user ID cannot be empty")
	ErrEmptyTaskToken  = errors.New("task token cannot be empty")
)

// Task tracks one unit of asynchronous work triggered by a sent message.
// The numeric ID is internal; clients only ever see the Token.
// Result is populated (as a JSON-encoded TaskResult) only when the task
// completes, ErrorMessage only when it fails.
type Task struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Token        uuid.UUID  `json:"task_id"`
	Status       TaskStatus `json:"status"`
	Result       string     `json:"result,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskResult is the structured payload stored on a completed task.
type TaskResult struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
}

// NewTask creates a new pending Task owned by the given user, generating a
// fresh unique token. The numeric ID is assigned by the store on insert.
func NewTask(userID int64) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:    userID,
		Token:     uuid.New(),
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.UserID <= 0 {
		return ErrEmptyTaskUserID
	}

	if t.Token == uuid.Nil {
		return ErrEmptyTaskToken
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the task has reached a terminal state.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
