package async

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spezi-dev/spezi/pkg/contextkeys"
	"github.com/spezi-dev/spezi/pkg/observability"
)

// syncBuffer guards a bytes.Buffer shared with task goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestRunner(t *testing.T, timeout time.Duration) (*Runner, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	r := NewRunner(observability.NewLogger(observability.DebugLevel, out), nil, timeout)
	t.Cleanup(func() { r.Close(context.Background()) })
	return r, out
}

func TestRunner_Success(t *testing.T) {
	r, _ := newTestRunner(t, time.Second)
	executed := atomic.Bool{}

	require.NoError(t, r.Go(context.Background(), "test task", func(ctx context.Context) error {
		executed.Store(true)
		return nil
	}))

	require.NoError(t, r.Close(context.Background()))
	assert.True(t, executed.Load())
}

func TestRunner_ErrorIsReportedAndLogged(t *testing.T) {
	r, out := newTestRunner(t, time.Second)
	ctx := contextkeys.WithRequestID(context.Background(), "req-9")

	require.NoError(t, r.Go(ctx, "touch last login", func(ctx context.Context) error {
		return errors.New("db down")
	}))

	select {
	case taskErr := <-r.Errors():
		assert.Equal(t, "touch last login", taskErr.Task)
		assert.EqualError(t, taskErr, "touch last login: db down")
	case <-time.After(time.Second):
		t.Fatal("expected task error")
	}

	require.NoError(t, r.Close(context.Background()))
	assert.Contains(t, out.String(), "Background task failed")
	assert.Contains(t, out.String(), `"request_id":"req-9"`)
}

func TestRunner_DetachedFromParentCancellation(t *testing.T) {
	r, _ := newTestRunner(t, time.Second)

	parent, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	result := make(chan error, 1)

	require.NoError(t, r.Go(parent, "detached", func(ctx context.Context) error {
		<-release
		result <- ctx.Err()
		return nil
	}))

	// The request finishing must not cancel the task
	cancel()
	close(release)

	assert.NoError(t, <-result)
}

func TestRunner_Timeout(t *testing.T) {
	r, _ := newTestRunner(t, 50*time.Millisecond)

	require.NoError(t, r.Go(context.Background(), "slow", func(ctx context.Context) error {
		select {
		case <-time.After(2 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	select {
	case taskErr := <-r.Errors():
		assert.ErrorIs(t, taskErr, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled by the runner timeout")
	}
}

func TestRunner_PanicRecovery(t *testing.T) {
	r, out := newTestRunner(t, time.Second)

	require.NoError(t, r.Go(context.Background(), "panicky", func(ctx context.Context) error {
		panic("unexpected nil")
	}))

	select {
	case taskErr := <-r.Errors():
		assert.Contains(t, taskErr.Error(), "panic: unexpected nil")
	case <-time.After(time.Second):
		t.Fatal("expected panic to be reported")
	}

	require.NoError(t, r.Close(context.Background()))
	assert.Contains(t, out.String(), "PANIC recovered")
}

func TestRunner_CloseRejectsNewTasks(t *testing.T) {
	r, _ := newTestRunner(t, time.Second)
	require.NoError(t, r.Close(context.Background()))

	err := r.Go(context.Background(), "late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunner_CloseWaitsForInFlight(t *testing.T) {
	r, _ := newTestRunner(t, time.Second)
	finished := atomic.Bool{}

	require.NoError(t, r.Go(context.Background(), "in flight", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	require.NoError(t, r.Close(context.Background()))
	assert.True(t, finished.Load())
}

func TestRunner_CloseHonoursDeadline(t *testing.T) {
	r, _ := newTestRunner(t, time.Second)
	release := make(chan struct{})
	defer close(release)

	require.NoError(t, r.Go(context.Background(), "stuck", func(ctx context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
}

func TestRunner_RecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	r := NewRunner(observability.NewLogger(observability.ErrorLevel, &syncBuffer{}), metrics, time.Second)

	require.NoError(t, r.Go(context.Background(), "ok task", func(context.Context) error { return nil }))
	require.NoError(t, r.Go(context.Background(), "bad task", func(context.Context) error { return errors.New("x") }))
	require.NoError(t, r.Close(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BackgroundTasksTotal.WithLabelValues("ok task", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BackgroundTasksTotal.WithLabelValues("bad task", "error")))
}
