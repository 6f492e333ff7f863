package actor

import "time"

// Scheduler runs f once after d. The returned handle cancels the pending
// call; Stop reports whether the call was prevented.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Cancelable
}

type Cancelable interface {
	Stop() bool
}

// WallClock schedules with time.AfterFunc.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Cancelable {
	return time.AfterFunc(d, f)
}

type timerFired struct {
	key     string
	seq     uint64
	message any
}

type timerEntry struct {
	handle Cancelable
	seq    uint64
}

// timers is only touched by the owning actor's goroutine. Scheduled
// callbacks only enqueue a timerFired envelope; accept drops deliveries
// whose sequence no longer matches the live entry.
type timers struct {
	owner     *cell
	scheduler Scheduler
	entries   map[string]timerEntry
	seq       uint64
}

func newTimers(owner *cell, scheduler Scheduler) *timers {
	return &timers{
		owner:     owner,
		scheduler: scheduler,
		entries:   make(map[string]timerEntry),
	}
}

func (t *timers) start(key string, d time.Duration, message any) {
	t.cancel(key)

	t.seq++
	seq := t.seq
	mailbox := t.owner.mailbox
	handle := t.scheduler.AfterFunc(d, func() {
		mailbox.Send(NewEnvelope(timerFired{key: key, seq: seq, message: message}, nil))
	})
	t.entries[key] = timerEntry{handle: handle, seq: seq}
}

func (t *timers) cancel(key string) {
	if entry, ok := t.entries[key]; ok {
		entry.handle.Stop()
		delete(t.entries, key)
	}
}

func (t *timers) cancelAll() {
	for key := range t.entries {
		t.cancel(key)
	}
}

func (t *timers) accept(fired timerFired) (any, bool) {
	entry, ok := t.entries[fired.key]
	if !ok || entry.seq != fired.seq {
		return nil, false
	}
	delete(t.entries, fired.key)
	return fired.message, true
}
