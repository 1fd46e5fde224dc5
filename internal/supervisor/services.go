package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
)

// Runner is anything with a blocking, context-aware run loop
type Runner interface {
	Serve(ctx context.Context) error
}

// OnceService wraps a runner that returns nil only when it was stopped on
// purpose. A nil return is turned into suture.ErrDoNotRestart so the
// supervisor leaves it stopped; errors still trigger a restart.
type OnceService struct {
	runner Runner
	name   string
}

func NewOnceService(name string, runner Runner) *OnceService {
	return &OnceService{runner: runner, name: name}
}

func (s *OnceService) Serve(ctx context.Context) error {
	err := s.runner.Serve(ctx)
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return err
}

func (s *OnceService) String() string {
	return s.name
}

// HTTPServer matches the lifecycle methods of *http.Server
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server until the supervisor cancels it
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

func NewHTTPServerService(name string, server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            name,
	}
}

func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("%s failed: %w", h.name, err)
		}
		return suture.ErrDoNotRestart
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", h.name, err)
	}
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return h.name
}

// FuncService adapts a plain function to suture.Service
type FuncService struct {
	fn   func(ctx context.Context) error
	name string
}

func NewFuncService(name string, fn func(ctx context.Context) error) *FuncService {
	return &FuncService{fn: fn, name: name}
}

func (f *FuncService) Serve(ctx context.Context) error {
	return f.fn(ctx)
}

func (f *FuncService) String() string {
	return f.name
}
