// Package broadcast implements a single-producer, many-consumer bus backed by
// a fixed-capacity ring buffer.
//
// Every published value is stamped with a monotonically increasing sequence
// number. A consumer holds a cursor (the next sequence it wants); comparing
// the cursor against the oldest retained sequence decides between normal
// delivery and a Lagged report. Publish never waits for consumers: when the
// ring is full the oldest entry is overwritten. PublishWait is the
// back-pressured variant used for bounded bursts such as startup
// announcements: it waits until every consumer has room.
package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/muhammadchandra19/exchange/pkg/errors"
)

// DefaultCapacity is the ring size used when a non-positive capacity is given.
const DefaultCapacity = 16

// ErrClosed is returned by Next once the bus is shut down and the consumer has
// drained every entry still retained for it.
var ErrClosed = errors.NewErrorDetails("broadcast bus closed", string(errors.BusClosed), "")

// LaggedError is returned by Next when the consumer fell more than capacity
// entries behind. Skipped is the number of entries it will never see.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("consumer lagged behind, %d updates skipped", e.Skipped)
}

// Code returns the error code of a lag report.
func (e *LaggedError) Code() errors.ErrorCode {
	return errors.BusLagged
}

// Stats is a point-in-time view of the bus.
type Stats struct {
	Capacity    int    `json:"capacity"`
	Published   uint64 `json:"published"`
	Retained    int    `json:"retained"`
	Subscribers int    `json:"subscribers"`
	Closed      bool   `json:"closed"`
}

// Bus fans out every published value to all subscribed consumers.
type Bus[T any] struct {
	mu       sync.Mutex
	ring     []T
	capacity uint64
	// tail is the sequence number the next Publish will use. Sequence s lives
	// in ring[s % capacity] while tail-capacity <= s < tail.
	tail      uint64
	closed    bool
	consumers map[string]*Consumer[T]
	// notify is closed and replaced on every Publish, and closed on Close, to
	// wake consumers blocked in Next.
	notify chan struct{}
	// space is closed and replaced when a consumer advances or leaves while
	// PublishWait callers are waiting.
	space   chan struct{}
	waiting int
}

// Consumer is a subscription handle. It is owned by one goroutine.
type Consumer[T any] struct {
	id     string
	bus    *Bus[T]
	cursor uint64
	// released is guarded by bus.mu.
	released bool
	// done is closed on release.
	done chan struct{}
}

// New creates a bus retaining the last capacity published values.
func New[T any](capacity int) *Bus[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus[T]{
		ring:      make([]T, capacity),
		capacity:  uint64(capacity),
		consumers: make(map[string]*Consumer[T]),
		notify:    make(chan struct{}),
		space:     make(chan struct{}),
	}
}

// Publish appends v to the ring and returns its sequence number. It never
// blocks on consumers. Publishing to a closed bus is a no-op that returns
// false.
func (b *Bus[T]) Publish(v T) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, false
	}

	return b.publish(v), true
}

// PublishWait is Publish without overwriting: while any consumer still has a
// full ring of unread entries it waits for that consumer to read or leave.
// It returns ErrClosed once the bus is closed and ctx.Err() when ctx is done
// first.
func (b *Bus[T]) PublishWait(ctx context.Context, v T) (uint64, error) {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return 0, ErrClosed
		}
		if !b.full() {
			seq := b.publish(v)
			b.mu.Unlock()
			return seq, nil
		}
		space := b.space
		b.waiting++
		b.mu.Unlock()

		var err error
		select {
		case <-space:
		case <-ctx.Done():
			err = ctx.Err()
		}

		b.mu.Lock()
		b.waiting--
		b.mu.Unlock()

		if err != nil {
			return 0, err
		}
	}
}

// publish must be called with the lock held on an open bus.
func (b *Bus[T]) publish(v T) uint64 {
	seq := b.tail
	b.ring[seq%b.capacity] = v
	b.tail++

	close(b.notify)
	b.notify = make(chan struct{})

	return seq
}

// full reports whether publishing now would overwrite an entry some consumer
// has not read. Must be called with the lock held.
func (b *Bus[T]) full() bool {
	for _, c := range b.consumers {
		if b.tail-c.cursor >= b.capacity {
			return true
		}
	}
	return false
}

// wakeProducers must be called with the lock held.
func (b *Bus[T]) wakeProducers() {
	if b.waiting == 0 || b.closed {
		return
	}
	close(b.space)
	b.space = make(chan struct{})
}

// Subscribe returns a consumer positioned at the current tail: it only sees
// values published after this call.
func (b *Bus[T]) Subscribe() *Consumer[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &Consumer[T]{
		id:     uuid.NewString(),
		bus:    b,
		cursor: b.tail,
		done:   make(chan struct{}),
	}
	if b.closed {
		c.released = true
		close(c.done)
		return c
	}
	b.consumers[c.id] = c
	return c
}

// Unsubscribe releases c. It has no effect on other consumers or on the
// producer. A blocked Next on c returns ErrClosed.
func (b *Bus[T]) Unsubscribe(c *Consumer[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.released {
		return
	}
	c.released = true
	close(c.done)
	delete(b.consumers, c.id)
	b.wakeProducers()
}

// Close shuts the bus down. Consumers first drain what is still retained for
// them, then receive ErrClosed. Close is idempotent.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.notify)
	close(b.space)
}

// Stats returns a snapshot of the bus counters.
func (b *Bus[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	retained := b.tail
	if retained > b.capacity {
		retained = b.capacity
	}
	return Stats{
		Capacity:    int(b.capacity),
		Published:   b.tail,
		Retained:    int(retained),
		Subscribers: len(b.consumers),
		Closed:      b.closed,
	}
}

// ID returns the identifier of the consumer.
func (c *Consumer[T]) ID() string {
	return c.id
}

// Next blocks until a value is available for c, the bus is closed, or ctx is
// done.
//
// When the producer has overwritten entries c had not read yet, Next returns a
// *LaggedError with the number of missed entries and moves the cursor to the
// oldest retained entry; the following call resumes normal, in-order
// delivery.
func (c *Consumer[T]) Next(ctx context.Context) (T, error) {
	var zero T
	b := c.bus

	for {
		b.mu.Lock()

		if c.released {
			b.mu.Unlock()
			return zero, ErrClosed
		}

		if oldest := b.oldest(); c.cursor < oldest {
			skipped := oldest - c.cursor
			c.cursor = oldest
			b.wakeProducers()
			b.mu.Unlock()
			return zero, &LaggedError{Skipped: skipped}
		}

		if c.cursor < b.tail {
			v := b.ring[c.cursor%b.capacity]
			c.cursor++
			b.wakeProducers()
			b.mu.Unlock()
			return v, nil
		}

		if b.closed {
			b.mu.Unlock()
			return zero, ErrClosed
		}

		notify := b.notify
		b.mu.Unlock()

		select {
		case <-notify:
		case <-c.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// oldest returns the smallest sequence still retained. Must be called with
// the lock held.
func (b *Bus[T]) oldest() uint64 {
	if b.tail <= b.capacity {
		return 0
	}
	return b.tail - b.capacity
}
