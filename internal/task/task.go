// Package task provides the background execution machinery for asynchronous
// work: a supervised worker pool and the chat generation executor it runs.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeChatGeneration identifies tasks that produce an assistant reply
	// for a sent message.
	TaskTypeChatGeneration = "chat_generation"
)

// Task represents a unit of background work to be processed. Implementations
// own their durable state transitions entirely; the runner only schedules
// them and contains failures.
type Task interface {
	// Token returns the task's externally visible identifier.
	Token() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// Submitter defines the interface services use to hand off background work.
type Submitter interface {
	// Submit adds a task to the processing queue without waiting for it to
	// run. Returns an error if the queue is full or the runner is stopped.
	Submit(ctx context.Context, task Task) error
}
