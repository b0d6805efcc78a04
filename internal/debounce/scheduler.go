// Package debounce provides delayed invocation with reschedule-on-repeat
// semantics.
//
// A Scheduler turns a burst of events into a single handler call: every
// Schedule cancels the previous pending invocation and arms a fresh timer
// for the full duration, so the handler fires once after the events have
// settled, with the payload of the last call.
package debounce

import (
	"sync"
	"time"
)

// Scheduler invokes a bound handler with a payload after a quiet period.
//
// Thread-safety: all methods are safe for concurrent use. The handler is
// never invoked concurrently with itself by the scheduler.
type Scheduler[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	seq     uint64 // invalidates stale timer callbacks
	handler func(T)
}

// NewScheduler creates a scheduler that calls handler after no Schedule
// call has been made for at least delay.
func NewScheduler[T any](delay time.Duration, handler func(T)) *Scheduler[T] {
	return &Scheduler[T]{
		delay:   delay,
		handler: handler,
	}
}

// Schedule arms the handler to run with payload after the configured delay.
//
// Any pending invocation is cancelled first; rescheduling always resets the
// full delay rather than extending the remaining time. When the handler
// fires it receives the payload of the most recent Schedule call.
func (s *Scheduler[T]) Schedule(payload T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = true
	s.seq++
	currentSeq := s.seq

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.pending && s.seq == currentSeq && s.handler != nil {
			s.pending = false
			s.mu.Unlock()
			s.handler(payload)
			return
		}
		s.mu.Unlock()
	})
}

// Unschedule cancels any pending invocation. It has no effect when nothing
// is pending.
func (s *Scheduler[T]) Unschedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// Invalidate a timer callback that may already be running.
	s.seq++
	s.pending = false
}

// IsPending reports whether an invocation is armed.
func (s *Scheduler[T]) IsPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Delay returns the configured quiet period.
//
// The delay is fixed for the lifetime of the scheduler; callers that need a
// different delay tear the scheduler down and create a new one so the change
// takes effect on the next event, not retroactively on an armed timer.
func (s *Scheduler[T]) Delay() time.Duration {
	return s.delay
}
