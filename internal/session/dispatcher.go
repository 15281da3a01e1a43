package session

import (
	"sync"
	"time"
)

// Dispatcher is an in-process Source. Dispatch delivers an event to every
// subscriber synchronously, in subscription order.
type Dispatcher struct {
	name string

	deliverMu sync.Mutex // held for the whole of a Dispatch
	mu        sync.Mutex
	nextID    int
	subs      []*dispatcherSubscription
}

// NewDispatcher creates a Dispatcher reporting itself under name
func NewDispatcher(name string) *Dispatcher {
	return &Dispatcher{name: name}
}

// Name returns the dispatcher name
func (d *Dispatcher) Name() string {
	return d.name
}

// Subscribe registers handler
func (d *Dispatcher) Subscribe(handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	sub := &dispatcherSubscription{id: d.nextID, dispatcher: d, handler: handler}
	d.subs = append(d.subs, sub)
	return sub, nil
}

// Dispatch delivers event to all current subscribers and returns how many
// handlers were invoked. A zero At is set to the current time.
func (d *Dispatcher) Dispatch(event Event) int {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	if event.At.IsZero() {
		event.At = time.Now()
	}
	if event.Source == "" {
		event.Source = d.name
	}

	d.mu.Lock()
	subs := make([]*dispatcherSubscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, sub := range subs {
		sub.handler(event)
	}
	return len(subs)
}

// Subscribers returns the number of active subscriptions
func (d *Dispatcher) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

type dispatcherSubscription struct {
	id         int
	dispatcher *Dispatcher
	handler    Handler
}

// Unsubscribe removes the subscription and waits for an in-flight Dispatch
func (s *dispatcherSubscription) Unsubscribe() error {
	d := s.dispatcher

	d.mu.Lock()
	for i, sub := range d.subs {
		if sub.id == s.id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	d.deliverMu.Lock()
	d.deliverMu.Unlock()
	return nil
}

// Ensure Dispatcher implements Source
var _ Source = (*Dispatcher)(nil)
