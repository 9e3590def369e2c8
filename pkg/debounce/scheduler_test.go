package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedule_RunsOnceAfterQuietPeriod(t *testing.T) {
	clock := NewManualClock()
	s := New(WithClock(clock))

	var calls int32
	for i := 0; i < 5; i++ {
		s.Schedule("project::title", func() { atomic.AddInt32(&calls, 1) }, 300*time.Millisecond)
		clock.Advance(100 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no calls while input keeps arriving, got %d", got)
	}
	if got := s.Pending("project::"); got != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", got)
	}

	clock.Advance(300 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one call after quiescence, got %d", got)
	}
	if got := s.Pending(""); got != 0 {
		t.Fatalf("expected no pending timers after firing, got %d", got)
	}
}

func TestCancelAll_ScopedByPrefix(t *testing.T) {
	clock := NewManualClock()
	s := New(WithClock(clock))

	fired := map[string]bool{}
	for _, key := range []string{"project::title", "project::status", "project-archive::title", "testimonial::clientName"} {
		key := key
		s.Schedule(key, func() { fired[key] = true }, time.Second)
	}

	if n := s.CancelAll("project::"); n != 2 {
		t.Fatalf("expected two cancelled timers, got %d", n)
	}
	if got := s.Pending("project::"); got != 0 {
		t.Fatalf("project timers should be gone, %d pending", got)
	}

	clock.Advance(time.Second)

	if fired["project::title"] || fired["project::status"] {
		t.Fatalf("cancelled timers fired: %v", fired)
	}
	if !fired["project-archive::title"] || !fired["testimonial::clientName"] {
		t.Fatalf("unrelated dialogs must keep their timers: %v", fired)
	}
}

func TestCancel_StaleTimerDoesNotRun(t *testing.T) {
	s := New(WithClock(NewManualClock()))

	ran := false
	s.Schedule("k", func() { ran = true }, time.Second)

	s.mu.Lock()
	gen := s.pending["k"].gen
	s.mu.Unlock()

	s.Cancel("k")
	// Simulate a timer that fired concurrently with Cancel.
	s.fire("k", gen, func() { ran = true })

	if ran {
		t.Fatalf("callback ran after cancellation")
	}
}

func TestSchedule_RealClock(t *testing.T) {
	s := New()
	done := make(chan struct{})
	s.Schedule("k", func() { close(done) }, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timer never fired")
	}
}
