package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Serve(ctx context.Context) error { return f(ctx) }

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (s *fakeServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return nil
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	if s.shutdowns.Add(1) == 1 {
		close(s.stop)
	}
	return nil
}

func TestOnceServiceMapsNilToDoNotRestart(t *testing.T) {
	svc := NewOnceService("once", runnerFunc(func(context.Context) error { return nil }))
	assert.ErrorIs(t, svc.Serve(context.Background()), suture.ErrDoNotRestart)
	assert.Equal(t, "once", svc.String())

	failing := NewOnceService("failing", runnerFunc(func(context.Context) error { return errors.New("boom") }))
	assert.EqualError(t, failing.Serve(context.Background()), "boom")
}

func TestHTTPServerServiceShutsDownOnCancel(t *testing.T) {
	server := newFakeServer(nil)
	svc := NewHTTPServerService("api-server", server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, int32(1), server.shutdowns.Load())
}

func TestHTTPServerServiceReportsListenErrors(t *testing.T) {
	svc := NewHTTPServerService("api-server", newFakeServer(errors.New("address in use")), 0)

	err := svc.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
}

func TestTreeRunsServicesUntilCancelled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tree := NewTree(logger, TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})

	var streamRuns, apiRuns atomic.Int32
	tree.AddStreamService(NewFuncService("stream", func(ctx context.Context) error {
		streamRuns.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}))
	tree.AddAPIService(NewFuncService("api", func(ctx context.Context) error {
		apiRuns.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	assert.Eventually(t, func() bool {
		return streamRuns.Load() == 1 && apiRuns.Load() == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}

func TestTreeRestartsFailingService(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tree := NewTree(logger, TreeConfig{FailureThreshold: 100, FailureBackoff: time.Millisecond})

	var runs atomic.Int32
	tree.AddStreamService(NewFuncService("flaky", func(ctx context.Context) error {
		if runs.Add(1) < 3 {
			return errors.New("transient")
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, time.Millisecond)

	// each failure is reported through the event hook
	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if entry.Data["service_name"] == "flaky" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
}
