package adapter

import (
	"context"
)

// Actions are the operations of an adapter as plain functions.
type Actions[T any] struct {
	FetchAll  func(ctx context.Context) []T
	FetchByID func(ctx context.Context, id any) (T, bool)
	Create    func(ctx context.Context, entity T) (T, bool)
	Update    func(ctx context.Context, entity T) (T, bool)
	Remove    func(ctx context.Context, id any) []T
	Query     func(ctx context.Context, params Params) []T
	FindByID  func(id any) (T, bool)
}

type Service[T any] struct {
	State   func(init *Init[T]) State[T]
	Actions Actions[T]
}

// Use builds an adapter for the entity name and returns its state accessor
// and actions.
func Use[T any](name string, opts ...Option[T]) Service[T] {
	return New[T](name, opts...).Service()
}

func (a *Adapter[T]) Service() Service[T] {
	return Service[T]{
		State: a.State,
		Actions: Actions[T]{
			FetchAll:  a.FetchAll,
			FetchByID: a.FetchByID,
			Create:    a.Create,
			Update:    a.Update,
			Remove:    a.Remove,
			Query:     a.Query,
			FindByID:  a.FindByID,
		},
	}
}
