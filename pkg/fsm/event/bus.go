package event

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrBusClosed indicates Publish was called after Close.
var ErrBusClosed = errors.New("event bus closed")

// Handler processes one delivered event. Handlers run on a
// per-subscription goroutine; a slow handler delays only its own
// subscription.
type Handler func(evt Event)

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe removes the subscription and stops delivery.
	Unsubscribe()
}

// Bus is an in-memory event bus with per-subscription buffered fan-out.
// Publish blocks when a subscriber's buffer is full, so no event is ever
// dropped; size buffers for the burstiest subscriber.
type Bus struct {
	bufferSize int

	mu     sync.RWMutex
	subs   map[string]*subscription
	nextID atomic.Int64
	closed atomic.Bool
}

type subscription struct {
	bus   *Bus
	id    string
	types map[Type]struct{} // nil subscribes to all types
	ch    chan Event
	done  chan struct{}
	once  sync.Once
}

// NewBus creates a bus with the given per-subscription buffer size.
// Sizes below 1 fall back to 64.
func NewBus(bufferSize int) *Bus {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &Bus{
		bufferSize: bufferSize,
		subs:       make(map[string]*subscription),
	}
}

// Publish delivers an event to every matching subscription. It blocks
// until each subscriber has buffered the event, the context is
// cancelled, or the bus closes.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.matches(evt.Type) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.ch <- evt:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for the given event types.
// An empty type list subscribes to all events.
func (b *Bus) Subscribe(types []Type, handler Handler) Subscription {
	var set map[Type]struct{}
	if len(types) > 0 {
		set = make(map[Type]struct{}, len(types))
		for _, t := range types {
			set[t] = struct{}{}
		}
	}

	sub := &subscription{
		bus:   b,
		id:    strconv.FormatInt(b.nextID.Add(1), 10),
		types: set,
		ch:    make(chan Event, b.bufferSize),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.deliver(handler)
	return sub
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	return b.Subscribe(nil, handler)
}

// Close shuts down the bus and all subscriptions. Publish returns
// ErrBusClosed afterwards.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[string]*subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	return nil
}

func (s *subscription) matches(t Type) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

func (s *subscription) deliver(handler Handler) {
	for {
		select {
		case evt := <-s.ch:
			handler(evt)
		case <-s.done:
			// Drain what was buffered before shutdown.
			for {
				select {
				case evt := <-s.ch:
					handler(evt)
				default:
					return
				}
			}
		}
	}
}

// Unsubscribe implements Subscription.
func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.stop()
}

func (s *subscription) stop() {
	s.once.Do(func() {
		close(s.done)
	})
}
