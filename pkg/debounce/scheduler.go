package debounce

import (
	"strings"
	"sync"
	"time"
)

// Stopper is the handle returned by Clock.AfterFunc.
type Stopper interface {
	Stop() bool
}

// Clock arms timers. The default implementation wraps time.AfterFunc; tests
// inject a manual clock so callbacks fire deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock used to arm timers.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type entry struct {
	gen     uint64
	stopper Stopper
}

// Scheduler runs keyed callbacks after a quiet period. Scheduling a key that
// already has a pending timer cancels the earlier one, so at most one
// invocation is pending per key.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	pending map[string]entry
	gen     uint64
}

// New constructs a Scheduler.
func New(options ...Option) *Scheduler {
	s := &Scheduler{
		clock:   realClock{},
		pending: make(map[string]entry),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Schedule cancels any timer registered under key and arms a new one that
// runs fn once wait has elapsed.
func (s *Scheduler) Schedule(key string, fn func(), wait time.Duration) {
	if s == nil || fn == nil {
		return
	}
	if wait < 0 {
		wait = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(key)
	s.gen++
	gen := s.gen
	stopper := s.clock.AfterFunc(wait, func() {
		s.fire(key, gen, fn)
	})
	s.pending[key] = entry{gen: gen, stopper: stopper}
}

// fire runs fn only when the timer is still the live registration for key.
// A timer that raced with Cancel finds a different (or no) generation and
// returns without running.
func (s *Scheduler) fire(key string, gen uint64, fn func()) {
	s.mu.Lock()
	current, ok := s.pending[key]
	if !ok || current.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	fn()
}

// Cancel drops the pending timer for key, if any.
func (s *Scheduler) Cancel(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(key)
}

// CancelAll drops every pending timer whose key starts with prefix and returns
// how many were cancelled. An empty prefix cancels everything.
func (s *Scheduler) CancelAll(prefix string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for key := range s.pending {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		s.stopLocked(key)
		cancelled++
	}
	return cancelled
}

// Pending reports how many timers are armed under prefix.
func (s *Scheduler) Pending(prefix string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.pending {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count
}

func (s *Scheduler) stopLocked(key string) {
	current, ok := s.pending[key]
	if !ok {
		return
	}
	if current.stopper != nil {
		current.stopper.Stop()
	}
	delete(s.pending, key)
}
