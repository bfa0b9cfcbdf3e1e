package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a controllable Task implementation for runner tests.
type stubTask struct {
	token    uuid.UUID
	execute  func(ctx context.Context) error
	started  chan struct{}
	finished chan struct{}
	once     sync.Once
}

func newStubTask(execute func(ctx context.Context) error) *stubTask {
	return &stubTask{
		token:    uuid.New(),
		execute:  execute,
		started:  make(chan struct{}),
		finished: make(chan struct{}),
	}
}

func (t *stubTask) Token() uuid.UUID { return t.token }
func (t *stubTask) Type() string     { return "stub" }

func (t *stubTask) Execute(ctx context.Context) error {
	t.once.Do(func() { close(t.started) })
	defer close(t.finished)
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func waitClosed(t *testing.T, ch chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func TestRunnerProcessesSubmittedTasks(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 4}, testLogger())
	runner.Start()
	defer runner.Stop()

	task := newStubTask(nil)
	require.NoError(t, runner.Submit(context.Background(), task))
	waitClosed(t, task.finished, "task was never executed")
}

func TestRunnerSubmitQueueFull(t *testing.T) {
	t.Parallel()

	// No workers started, so the queue never drains.
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())

	require.NoError(t, runner.Submit(context.Background(), newStubTask(nil)))

	err := runner.Submit(context.Background(), newStubTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestRunnerSubmitAfterStop(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	runner.Start()
	runner.Stop()

	err := runner.Submit(context.Background(), newStubTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}

func TestRunnerContainsPanics(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4}, testLogger())
	runner.Start()
	defer runner.Stop()

	panicker := newStubTask(func(ctx context.Context) error {
		panic("bad task")
	})
	require.NoError(t, runner.Submit(context.Background(), panicker))
	waitClosed(t, panicker.started, "panicking task never started")

	// The pool survives and keeps processing.
	follower := newStubTask(nil)
	require.NoError(t, runner.Submit(context.Background(), follower))
	waitClosed(t, follower.finished, "worker died after a task panic")
}

func TestRunnerStopDoesNotCancelRunningTask(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var sawCancel bool
	task := newStubTask(func(ctx context.Context) error {
		<-release
		sawCancel = ctx.Err() != nil
		return nil
	})

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	runner.Start()

	require.NoError(t, runner.Submit(context.Background(), task))
	waitClosed(t, task.started, "task never started")

	stopDone := make(chan struct{})
	go func() {
		runner.Stop()
		close(stopDone)
	}()

	// Stop blocks until the in-flight task finishes.
	select {
	case <-stopDone:
		t.Fatal("Stop returned while a task was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	waitClosed(t, stopDone, "Stop never returned")
	waitClosed(t, task.finished, "task never finished")
	assert.False(t, sawCancel, "running task saw a cancelled context")
}
