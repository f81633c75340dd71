package background

import (
	"context"
	"sync"
	"time"
)

// Scope - group of goroutines sharing one cancellation context.
// After Cancel the scope refuses new members, so Wait never races with Go.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewScope - concurrency scope builder.
func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context - returns the scope context, it is done after Cancel.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go - runs f in a new goroutine tracked by the scope.
// Returns false and does not run f if the scope is cancelled already.
func (s *Scope) Go(f func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		f(s.ctx)
	}()
	return true
}

// Cancel - cancels the scope context. Repeated calls are no-op.
func (s *Scope) Cancel() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}

// Wait - waits for all members up to timeout, negative or zero timeout means no limit.
// Returns false if timeout has expired before all members are done.
func (s *Scope) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	if timeout <= 0 {
		<-done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
