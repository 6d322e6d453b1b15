package adapter

import (
	"slices"

	"github.com/fulldump/entitycache/collection"
	"github.com/fulldump/entitycache/reactive"
)

// Init replaces the adapter state when passed to State.
type Init[T any] struct {
	Entities []T
	Loading  bool
}

// State exposes the live containers. Their values follow every operation.
type State[T any] struct {
	Entities reactive.Container[[]T]
	Loading  reactive.Container[bool]
}

// Snapshot copies the current values out of the containers.
func (s State[T]) Snapshot() ([]T, bool) {
	return slices.Clone(s.Entities.Get()), s.Loading.Get()
}

// State returns the live containers. A non nil init first replaces the
// collection (rebuilding its index) and the loading flag.
func (a *Adapter[T]) State(init *Init[T]) State[T] {
	if init != nil {
		a.commit(func(rows *collection.Collection[T]) {
			rows.Reset(init.Entities)
			a.setLoadingLocked(init.Loading)
		})
	}

	return State[T]{
		Entities: a.entities,
		Loading:  a.loadingRef,
	}
}
