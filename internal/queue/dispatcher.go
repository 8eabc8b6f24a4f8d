package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrDispatcherFull is returned when the event buffer has no room.
var ErrDispatcherFull = errors.New("queue: event buffer full")

// ErrDispatcherClosed is returned by Publish after Close.
var ErrDispatcherClosed = errors.New("queue: dispatcher closed")

// Sender delivers one event to the broker.  *Publisher implements it.
type Sender interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// Dispatcher decouples callers from the broker: Publish only enqueues,
// and a single goroutine forwards events to the Sender.  A slow or
// hung broker fills the buffer and drops events instead of stalling
// bookings.
type Dispatcher struct {
	out     Sender
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan ReservationEvent
	done   chan struct{}
}

// NewDispatcher starts the forwarding goroutine.  size is the buffer
// length; each send is bounded by timeout.
func NewDispatcher(out Sender, size int, timeout time.Duration) *Dispatcher {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &Dispatcher{
		out:     out,
		timeout: timeout,
		events:  make(chan ReservationEvent, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues ev without blocking.
func (d *Dispatcher) Publish(_ context.Context, ev ReservationEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrDispatcherFull
	}
}

// Close stops accepting events and waits for the buffer to drain or
// ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.out.Publish(ctx, ev); err != nil {
			log.Printf("dispatcher: dropped %s event %s: %v", ev.Type, ev.EventID, err)
		}
		cancel()
	}
}
