package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spezi-dev/spezi/pkg/contextkeys"
	"github.com/spezi-dev/spezi/pkg/observability"
)

// ErrClosed is returned by Go after Close has been called
var ErrClosed = errors.New("runner closed")

// TaskError reports a failed or panicked background task
type TaskError struct {
	Task string
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Task, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// Runner executes fire-and-forget tasks with:
// - Detachment from the caller's cancellation (values are kept)
// - Per-task timeout
// - Panic recovery
// - Error logging and a non-blocking error channel
//
// Use this instead of bare `go func()` so that shutdown can wait for
// in-flight work.
//
// Example:
//
//	runner.Go(r.Context(), "touch last login", func(ctx context.Context) error {
//	    return apiUsers.TouchLastLogin(ctx, key, time.Now())
//	})
type Runner struct {
	logger  *observability.Logger
	metrics *observability.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errCh  chan TaskError
}

// NewRunner creates a runner. metrics may be nil.
func NewRunner(logger *observability.Logger, metrics *observability.Metrics, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Runner{
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		errCh:   make(chan TaskError, 64),
	}
}

// Go starts fn in its own goroutine. The task keeps running after parent is
// cancelled, bounded only by the runner timeout.
func (r *Runner) Go(parent context.Context, task string, fn func(context.Context) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.timeout)
		defer cancel()

		err := r.run(ctx, task, fn)
		r.metrics.RecordTask(task, err)
		if err != nil {
			r.report(ctx, task, err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, task string, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			observability.LogPanic(r.logger, task, rec)
			err = observability.MustRecover(rec)
		}
	}()
	return fn(ctx)
}

func (r *Runner) report(ctx context.Context, task string, err error) {
	logger := r.logger
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		logger = logger.WithField("request_id", requestID)
	}
	logger.WithField("task", task).WithError(err).Warn("Background task failed")

	select {
	case r.errCh <- TaskError{Task: task, Err: err}:
	default:
		logger.WithField("task", task).Debug("Error channel full, dropping task error")
	}
}

// Errors returns a channel that receives task failures.
// Non-blocking for the runner; errors are dropped when nobody drains it.
func (r *Runner) Errors() <-chan TaskError {
	return r.errCh
}

// Close stops accepting tasks and waits for in-flight ones until ctx is done
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
