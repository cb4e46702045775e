package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/reqctx"
	"github.com/jsamuelsen/reqctx/internal/domain"
)

func newTestInspector(defaultWorkers, maxWorkers int) *Inspector {
	return NewInspector(InspectorConfig{
		DefaultWorkers: defaultWorkers,
		MaxWorkers:     maxWorkers,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// seedScope installs a fresh request context on the calling goroutine and
// seeds it with the standard inspection keys. The caller must Restore.
func seedScope(requestID, correlationID, path string) *reqctx.Scope {
	scope := reqctx.NewScope()

	rc := reqctx.Get()
	rc.SetData(DataKeyRequestID, NewStringData(requestID))
	rc.SetData(DataKeyCorrelationID, NewStringData(correlationID))
	rc.SetData(DataKeyPath, NewStringData(path))

	return scope
}

func TestInspectorObserve(t *testing.T) {
	scope := seedScope("req-1", "corr-1", "/things")
	defer scope.Restore()

	svc := newTestInspector(2, 8)

	obs := svc.Observe(context.Background())

	assert.True(t, obs.Installed)
	assert.Equal(t, "req-1", obs.RequestID)
	assert.Equal(t, "corr-1", obs.CorrelationID)
	assert.Equal(t, "/things", obs.Path)
}

func TestInspectorObserve_NothingInstalled(t *testing.T) {
	svc := newTestInspector(2, 8)

	obs := svc.Observe(context.Background())

	assert.False(t, obs.Installed)
	assert.Empty(t, obs.RequestID)
	assert.Empty(t, obs.CorrelationID)
	assert.Empty(t, obs.Path)
}

func TestInspectorObserve_StdContextFallback(t *testing.T) {
	// A caller reached through context.Context plumbing has nothing in its
	// goroutine slot but can still carry the context in the std context.
	rc := reqctx.New()
	rc.SetData(DataKeyRequestID, NewStringData("req-std"))

	ctx := reqctx.NewStdContext(context.Background(), rc)

	svc := newTestInspector(2, 8)

	obs := svc.Observe(ctx)

	assert.True(t, obs.Installed)
	assert.Equal(t, "req-std", obs.RequestID)
}

func TestInspectorInspect(t *testing.T) {
	scope := seedScope("req-2", "corr-2", "/inspect")
	defer scope.Restore()

	svc := newTestInspector(2, 8)

	report, err := svc.Inspect(context.Background(), 4)
	require.NoError(t, err)

	assert.True(t, report.Parent.Installed)
	assert.Equal(t, "req-2", report.Parent.RequestID)
	require.Len(t, report.Workers, 4)

	for _, worker := range report.Workers {
		assert.True(t, worker.Installed)
		assert.True(t, worker.SameContext)
		assert.Equal(t, "req-2", worker.RequestID)
		assert.Equal(t, "corr-2", worker.CorrelationID)
		assert.Equal(t, "/inspect", worker.Path)
	}
}

func TestInspectorInspect_DefaultWorkerCount(t *testing.T) {
	scope := seedScope("req-3", "corr-3", "/inspect")
	defer scope.Restore()

	svc := newTestInspector(3, 8)

	report, err := svc.Inspect(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, report.Workers, 3)
}

func TestInspectorInspect_TooManyWorkers(t *testing.T) {
	svc := newTestInspector(2, 4)

	report, err := svc.Inspect(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "must be at most 4")
}

func TestInspectorInspect_CanceledContext(t *testing.T) {
	scope := seedScope("req-4", "corr-4", "/inspect")
	defer scope.Restore()

	svc := newTestInspector(2, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Inspect(ctx, 2)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}
