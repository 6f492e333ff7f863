package actortest

import (
	"sort"
	"sync"
	"time"

	"github.com/tailored-agentic-units/wordcount/actor"
)

// ManualScheduler is an actor.Scheduler driven by a virtual clock. Timers
// fire only when the test calls Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	scheduler *ManualScheduler
	at        time.Duration
	f         func()
	done      bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) actor.Cancelable {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{scheduler: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves the clock forward and runs every timer that became due, in
// deadline order. It returns the number of timers fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d

	var due, pending []*manualTimer
	for _, t := range s.timers {
		switch {
		case t.done:
		case t.at <= s.now:
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Pending reports timers that are scheduled and neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// AwaitPending polls until at least n timers are pending or timeout passes.
// Actors arm timers on their own goroutine, so tests wait for the arm
// before advancing the clock.
func (s *ManualScheduler) AwaitPending(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Pending() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return s.Pending() >= n
}
