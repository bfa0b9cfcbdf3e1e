package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background task processing with a fixed worker pool over a
// buffered queue. Submission never blocks the caller: the queue either
// accepts the task immediately or Submit fails.
//
// The runner deliberately has no crash recovery and no stuck-task sweeper.
// Tasks own their durable state; a task interrupted mid-flight stays in
// whatever state it last committed, and a task still queued at shutdown
// stays pending.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

var _ Submitter = (*Runner)(nil)

// NewRunner creates a new Runner.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "task_runner"),
	}
}

// Submit adds a new task to the queue. The call returns as soon as the task
// is enqueued; execution happens on a worker goroutine.
func (r *Runner) Submit(ctx context.Context, task Task) error {
	select {
	case <-r.ctx.Done():
		return fmt.Errorf("task runner is stopped")
	default:
	}

	select {
	case r.taskChan <- task:
		r.logger.Debug("task enqueued",
			"task_token", task.Token(),
			"task_type", task.Type())
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
}

// Stop shuts down the runner. Workers finish the task they are on and exit;
// queued tasks that never ran are dropped from the queue and remain pending
// in the store.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// worker processes tasks from the queue.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task := <-r.taskChan:
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task. Errors are already
// reflected in the task's own durable state by the time Execute returns, so
// the runner only logs; a panic is contained here so one misbehaving task
// cannot take down the pool. The task runs under a fresh context: a running
// task is never cancelled, not even at shutdown.
func (r *Runner) processTask(task Task, workerID int) {
	log := r.logger.With(
		"task_token", task.Token(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("task panicked", "panic", p)
		}
	}()

	log.Info("processing task")

	if err := task.Execute(context.Background()); err != nil {
		log.Error("task execution failed", "error", err)
		return
	}

	log.Info("task completed successfully")
}
