// Package events is a typed publish/subscribe bus with explicit subscription
// handles.
//
// Dispatch delivers immediately. Post queues an event that ProcessEvents
// delivers later, in FIFO order, including events posted by handlers while
// the queue is being processed. A handler returning Handled stops delivery
// of that event to later subscribers.
package events

import (
	"reflect"
	"sync"
)

// Result tells the bus whether delivery should continue.
type Result int

const (
	Continue Result = iota
	Handled
)

// Subscription identifies one registered handler. The zero value is never
// issued.
type Subscription uint64

type handler struct {
	id      Subscription
	fn      func(any) Result
	removed bool
}

// Bus is safe for concurrent Subscribe, Unsubscribe and Post. Dispatch and
// ProcessEvents are meant for the step goroutine.
type Bus struct {
	mu       sync.Mutex
	nextID   Subscription
	handlers map[reflect.Type][]*handler
	byID     map[Subscription]*handler
	queue    []any
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]*handler),
		byID:     make(map[Subscription]*handler),
	}
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T) Result) Subscription {
	t := reflect.TypeFor[T]()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	h := &handler{
		id: b.nextID,
		fn: func(ev any) Result { return fn(ev.(T)) },
	}
	b.handlers[t] = append(b.handlers[t], h)
	b.byID[h.id] = h
	return h.id
}

// Unsubscribe removes a handler. It takes effect immediately, even for an
// event currently being delivered. Unknown or already removed handles are
// ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.byID[sub]
	if !ok {
		return
	}
	delete(b.byID, sub)
	h.removed = true
	for t, list := range b.handlers {
		for i, cur := range list {
			if cur == h {
				b.handlers[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// UnsubscribeAll releases every handle in subs.
func (b *Bus) UnsubscribeAll(subs []Subscription) {
	for _, s := range subs {
		b.Unsubscribe(s)
	}
}

// Dispatch delivers ev to the current subscribers of its dynamic type and
// reports whether one of them handled it.
func (b *Bus) Dispatch(ev any) bool {
	if ev == nil {
		return false
	}
	b.mu.Lock()
	list := append([]*handler(nil), b.handlers[reflect.TypeOf(ev)]...)
	b.mu.Unlock()

	for _, h := range list {
		b.mu.Lock()
		removed := h.removed
		b.mu.Unlock()
		if removed {
			continue
		}
		if h.fn(ev) == Handled {
			return true
		}
	}
	return false
}

// Post queues ev for the next ProcessEvents.
func (b *Bus) Post(ev any) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
}

// ProcessEvents dispatches queued events until the queue is empty and
// returns how many were delivered.
func (b *Bus) ProcessEvents() int {
	n := 0
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return n
		}
		ev := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		b.mu.Unlock()

		b.Dispatch(ev)
		n++
	}
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Subscribers returns how many handlers are registered for events of type T.
func Subscribers[T any](b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[reflect.TypeFor[T]()])
}
