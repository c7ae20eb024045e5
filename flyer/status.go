package flyer

import (
	"context"
	"sync"
)

// CompletionStatus is an asynchronous handle for a pending flyer operation.
// It resolves to success or failure exactly once; the flyer resolves it from
// the background task when the operation finishes.
//
// Callers may poll Done or block on Wait. Once Done reports true, Success and
// Err are stable.
type CompletionStatus struct {
	mu   sync.RWMutex
	once sync.Once
	done chan struct{}
	err  error
}

func newCompletionStatus() *CompletionStatus {
	return &CompletionStatus{done: make(chan struct{})}
}

// Done reports whether the operation has resolved.
func (s *CompletionStatus) Done() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Success reports whether the operation resolved without error. It returns
// false while the operation is still pending.
func (s *CompletionStatus) Success() bool {
	return s.Done() && s.Err() == nil
}

// Err returns the resolution error, or nil if the operation succeeded or is
// still pending.
func (s *CompletionStatus) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// Wait blocks until the operation resolves or ctx is done. It returns the
// resolution error on failure, or the context error if ctx expired first.
func (s *CompletionStatus) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve records the outcome and wakes all waiters. Resolving more than once
// is a contract violation; later calls are ignored.
func (s *CompletionStatus) resolve(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		close(s.done)
	})
}
