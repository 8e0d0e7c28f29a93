// Package mutation runs write operations with optimistic update hooks.
//
// A Mutation goes through three phases in strict order: OnMutate applies
// the optimistic change and returns a rollback context, Request performs
// the server call, and exactly one of OnSuccess or OnError settles the
// outcome. OnMutate always finishes before Request starts, so the
// rollback context captured there reflects the pre-request state.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Mutation describes one write operation. C is the rollback context type
// produced by OnMutate; R is the server response type.
type Mutation[C, R any] struct {
	// Name identifies the mutation in logs and metrics.
	Name string

	// OnMutate applies the optimistic cache change and returns the context
	// needed to settle or roll it back. It runs to completion before the
	// request fires. An error here aborts the mutation entirely; no
	// request is made and neither settle hook runs.
	OnMutate func(ctx context.Context) (C, error)

	// Request performs the server call.
	Request func(ctx context.Context) (R, error)

	// OnSuccess reconciles the optimistic state with the server response.
	OnSuccess func(ctx context.Context, mutateCtx C, resp R)

	// OnError rolls the optimistic state back.
	OnError func(ctx context.Context, mutateCtx C, err error)
}

// Run executes the mutation synchronously. It returns the request error,
// after the matching settle hook has completed.
func Run[C, R any](ctx context.Context, m Mutation[C, R]) error {
	var mutateCtx C
	if m.OnMutate != nil {
		var err error
		mutateCtx, err = m.OnMutate(ctx)
		if err != nil {
			return fmt.Errorf("mutation %s: on mutate: %w", m.Name, err)
		}
	}

	resp, err := m.Request(ctx)
	if err != nil {
		if m.OnError != nil {
			m.OnError(ctx, mutateCtx, err)
		}
		return err
	}

	if m.OnSuccess != nil {
		m.OnSuccess(ctx, mutateCtx, resp)
	}
	return nil
}

// Executor dispatches mutations in the background while keeping them
// trackable for shutdown. The zero value is not usable; use NewExecutor.
type Executor struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Go runs fn on its own goroutine. Errors are logged, not returned;
// callers that need the error should use Run directly.
func (e *Executor) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		start := time.Now()
		if err := fn(ctx); err != nil {
			e.logger.Warn("background mutation failed",
				slog.String("mutation", name),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()),
			)
			return
		}
		e.logger.Debug("background mutation settled",
			slog.String("mutation", name),
			slog.Duration("elapsed", time.Since(start)),
		)
	}()
}

// Wait blocks until every dispatched mutation settles.
func (e *Executor) Wait() {
	e.wg.Wait()
}
