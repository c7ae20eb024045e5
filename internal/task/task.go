// Package task manages the lifecycle of background goroutines for the flyer
// packages. It provides a structured way to start, stop, and wait for named
// tasks, ensuring proper cancellation, panic recovery, and resource cleanup.
package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/prjemian/flyscan/logger"
)

// Func represents a function that performs a task within a goroutine managed
// by the Runner. It should return true to continue running the task, or false
// to stop the goroutine.
type Func func() bool

// ActionFunc represents a one-shot action executed on a background goroutine.
// The returned error is delivered to the DoneFunc registered with Run.
type ActionFunc func() error

// DoneFunc is called exactly once when a one-shot action finishes, with the
// action's error (nil on success). A panic inside the action is recovered and
// delivered as an error.
type DoneFunc func(err error)

// Runner manages the lifecycle of goroutines within a flyer instance.
//
// The Runner uses a context.Context to manage the lifecycle of the goroutines.
// When the context is canceled, all running goroutines are signaled to stop.
// A sync.WaitGroup is used to wait for all goroutines to terminate before
// returning from the Wait() method.
//
// Example Usage:
//
//	runner := task.NewRunner(ctx, logger)
//
//	_ = runner.Run("spinSequence", func() error {
//	    // ... action logic ...
//	    return nil
//	}, func(err error) {
//	    // ... completion logic ...
//	})
//
//	runner.Stop()
//	runner.Wait()
type Runner struct {
	pctx    context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  logger.Logger
	count   atomic.Int32
	tickers *xsync.MapOf[string, *time.Ticker]
	mu      sync.RWMutex // protect ctx and cancel
}

// NewRunner creates a new Runner with the given context as the parent context and logger.
func NewRunner(ctx context.Context, l logger.Logger) *Runner {
	r := &Runner{
		pctx:    ctx,
		logger:  l,
		tickers: xsync.NewMapOf[string, *time.Ticker](),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	return r
}

// getContext safely returns the current context.
func (r *Runner) getContext() context.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ctx
}

// Run starts a one-shot action on a new goroutine with the given name.
//
// The doneFunc is invoked on the goroutine when the action returns or panics;
// it receives the action's error, or a wrapped panic error. It may be nil.
//
// Run returns once the goroutine has started, or an error if the runner is
// already stopped.
func (r *Runner) Run(name string, action ActionFunc, doneFunc DoneFunc) error {
	r.logger.Debug("run action task", "name", name)

	starter, err := r.newStarter(name)
	if err != nil {
		return err
	}

	starter.start(func() {
		var actErr error

		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("panic in action task", "name", name, "panic", rec)
					actErr = fmt.Errorf("panic in %s: %v", name, rec)
				}
			}()

			actErr = action()
		}()

		if doneFunc != nil {
			doneFunc(actErr)
		}
	})

	return starter.waitForStart()
}

// StartLoop starts a new goroutine that invokes taskFunc repeatedly until it
// returns false or the runner's context is canceled.
func (r *Runner) StartLoop(name string, taskFunc Func) error {
	r.logger.Debug("start loop task", "name", name)

	starter, err := r.newStarter(name)
	if err != nil {
		return err
	}

	starter.start(func() {
		r.runLoop(taskFunc)
	})

	return starter.waitForStart()
}

// StartInterval starts a new goroutine that executes the given task function at
// the specified interval. If runNow is true, the task function is executed
// immediately before starting the interval.
// The function returns a *time.Ticker that can be used to stop the interval.
func (r *Runner) StartInterval(name string, taskFunc Func, interval time.Duration, runNow bool) (*time.Ticker, error) {
	r.logger.Debug("start interval task", "name", name, "interval", interval, "runNow", runNow)

	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval: %v", interval)
	}

	ticker := time.NewTicker(interval)

	// store ticker before starting goroutine
	if _, loaded := r.tickers.LoadOrStore(name, ticker); loaded {
		ticker.Stop()
		return nil, fmt.Errorf("interval task %s already exists", name)
	}

	cleanup := func() {
		ticker.Stop()
		r.tickers.Delete(name)
	}

	if runNow {
		if !r.callWithRecover(name, taskFunc) {
			cleanup()
			r.logger.Debug(fmt.Sprintf("%s interval task terminated by runNow", name))
			return ticker, nil
		}
	}

	starter, err := r.newStarter(name)
	if err != nil {
		cleanup()
		return nil, err
	}

	starter.start(func() {
		defer cleanup()

		for {
			ctx := r.getContext()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !r.callWithRecover(name, taskFunc) {
					return
				}
			}
		}
	})

	if err := starter.waitForStart(); err != nil {
		cleanup()
		return nil, err
	}

	return ticker, nil
}

// StopInterval stops the interval task with the given name.
//
// It returns an error if the task is not found.
func (r *Runner) StopInterval(name string) error {
	if ticker, ok := r.tickers.LoadAndDelete(name); ok {
		ticker.Stop()
		return nil
	}

	return fmt.Errorf("ticker %s not found", name)
}

// Stop signals all running goroutines.
func (r *Runner) Stop() {
	r.tickers.Range(func(name string, ticker *time.Ticker) bool {
		ticker.Stop()
		return true
	})

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
}

// Wait waits for all goroutines to terminate, then rearms the runner so new
// tasks can be started again.
func (r *Runner) Wait() {
	r.wg.Wait()

	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(r.pctx)
	r.mu.Unlock()
}

// TaskCount returns the number of currently running goroutines.
func (r *Runner) TaskCount() int {
	return int(r.count.Load())
}

// callWithRecover calls a function that returns bool with panic protection.
func (r *Runner) callWithRecover(name string, fn func() bool) bool {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic in task", "name", name, "panic", rec)
		}
	}()

	return fn()
}

// runLoop runs a task function in a loop with context cancellation.
func (r *Runner) runLoop(taskFunc Func) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic in task loop", "panic", rec)
		}
	}()

	for {
		ctx := r.getContext()
		select {
		case <-ctx.Done():
			return
		default:
			if !taskFunc() {
				return
			}
		}
	}
}

// starter encapsulates common startup logic.
type starter struct {
	runner  *Runner
	name    string
	started chan error
}

func (r *Runner) newStarter(name string) (*starter, error) {
	ctx := r.getContext()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("task runner already stopped")
	default:
	}

	return &starter{
		runner:  r,
		name:    name,
		started: make(chan error, 1),
	}, nil
}

// start runs the common startup sequence for all tasks.
func (s *starter) start(taskBody func()) {
	s.runner.wg.Add(1)

	go func() {
		defer s.runner.wg.Done()

		s.runner.count.Add(1)
		s.started <- nil

		defer func() {
			s.runner.count.Add(-1)
			s.runner.logger.Debug(fmt.Sprintf("%s task terminated", s.name), "task_count", s.runner.TaskCount())
		}()

		taskBody()
	}()
}

// waitForStart waits for the task to start with timeout.
func (s *starter) waitForStart() error {
	ctx := s.runner.getContext()

	select {
	case err := <-s.started:
		if err != nil {
			return fmt.Errorf("failed to start %s: %w", s.name, err)
		}

		return nil

	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for %s to start", s.name)

	case <-ctx.Done():
		return fmt.Errorf("context cancelled while starting %s", s.name)
	}
}
