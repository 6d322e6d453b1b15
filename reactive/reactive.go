// Package reactive provides observable value containers.
//
// A Container holds one value and notifies its subscribers whenever the value
// is replaced (Set) or modified in place (Mutate). Consumers inject the
// container implementation they want through a Factory.
package reactive

import (
	"sync"
)

type EventType string

const (
	EventSet    EventType = "set"
	EventMutate EventType = "mutate"
)

type Event[V any] struct {
	Type  EventType
	Value V
}

type Container[V any] interface {
	Get() V
	Set(V)
	Mutate(func(*V))
	Subscribe(func(Event[V])) (cancel func())
}

// Factory builds a container holding initial.
type Factory[V any] func(initial V) Container[V]

// RefFactory returns a Factory of *Ref containers.
func RefFactory[V any]() Factory[V] {
	return func(initial V) Container[V] {
		return NewRef(initial)
	}
}

// Ref is the default Container. Subscribers are called synchronously, in
// subscription order, after the value has been stored.
type Ref[V any] struct {
	mu          sync.RWMutex
	value       V
	subscribers []*subscriber[V]
}

type subscriber[V any] struct {
	f func(Event[V])
}

func NewRef[V any](initial V) *Ref[V] {
	return &Ref[V]{
		value: initial,
	}
}

func (r *Ref[V]) Get() V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

func (r *Ref[V]) Set(v V) {
	r.mu.Lock()
	r.value = v
	subscribers := r.subscribers
	r.mu.Unlock()

	notify(subscribers, Event[V]{Type: EventSet, Value: v})
}

// Mutate calls f with a pointer to the stored value, so f can modify it in
// place.
func (r *Ref[V]) Mutate(f func(*V)) {
	r.mu.Lock()
	f(&r.value)
	v := r.value
	subscribers := r.subscribers
	r.mu.Unlock()

	notify(subscribers, Event[V]{Type: EventMutate, Value: v})
}

func (r *Ref[V]) Subscribe(f func(Event[V])) (cancel func()) {
	s := &subscriber[V]{f: f}

	r.mu.Lock()
	r.subscribers = append(r.subscribers, s)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subscribers := make([]*subscriber[V], 0, len(r.subscribers))
		for _, other := range r.subscribers {
			if other != s {
				subscribers = append(subscribers, other)
			}
		}
		r.subscribers = subscribers
	}
}

func notify[V any](subscribers []*subscriber[V], e Event[V]) {
	for _, s := range subscribers {
		s.f(e)
	}
}
