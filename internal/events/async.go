package events

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event dispatcher closed")
)

// Async decouples callers from slow sinks. Publish only enqueues; a single
// worker delivers events in order to next, each under its own timeout and
// detached from the caller's context.
type Async struct {
	next    Publisher
	queue   chan Event
	timeout time.Duration
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next Publisher, buffer int, timeout time.Duration) *Async {
	if buffer <= 0 {
		buffer = 1
	}
	a := &Async{
		next:    next,
		queue:   make(chan Event, buffer),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish enqueues e without blocking. It fails with ErrQueueFull when the
// worker has fallen behind by more than the buffer.
func (a *Async) Publish(_ context.Context, e Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queued ones to be delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		a.deliver(e)
	}
}

func (a *Async) deliver(e Event) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if err := a.next.Publish(ctx, e); err != nil {
		log.Printf("event_delivery_failed type=%s event_id=%s reservation_id=%s error=%q", e.Type, e.ID, e.ReservationID, err)
	}
}
