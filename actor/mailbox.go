package actor

import (
	"context"
	"sync"
)

// Mailbox is an unbounded multi-producer, single-consumer FIFO queue.
// Send never blocks, so actors that message each other in a cycle cannot
// deadlock on full buffers.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	notify chan struct{}
	closed bool
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send enqueues message. It returns false once the mailbox is closed.
func (m *Mailbox[T]) Send(message T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, message)
	m.mu.Unlock()

	m.signal()
	return true
}

// Receive blocks until a message is available, the mailbox is closed or
// ctx is done. Only one goroutine may call Receive.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	for {
		if message, ok, closed := m.pop(); ok {
			return message, nil
		} else if closed {
			var zero T
			return zero, ErrMailboxClosed
		}

		select {
		case <-m.notify:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func (m *Mailbox[T]) TryReceive() (T, bool) {
	message, ok, _ := m.pop()
	return message, ok
}

// Close rejects further sends and returns whatever was still queued, in
// arrival order.
func (m *Mailbox[T]) Close() []T {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	remaining := m.queue
	m.queue = nil
	m.mu.Unlock()

	m.signal()
	return remaining
}

func (m *Mailbox[T]) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox[T]) pop() (message T, ok bool, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		m.queue = nil
		return message, false, m.closed
	}

	message = m.queue[0]
	var zero T
	m.queue[0] = zero
	m.queue = m.queue[1:]
	return message, true, m.closed
}

func (m *Mailbox[T]) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
