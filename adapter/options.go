package adapter

import (
	"log/slog"

	"github.com/fulldump/entitycache/reactive"
	"github.com/fulldump/entitycache/transport"
)

type Option[T any] func(*Adapter[T])

// WithResourcePath overrides the default path (the entity name plus "s").
func WithResourcePath[T any](path string) Option[T] {
	return func(a *Adapter[T]) {
		a.path = path
	}
}

func WithTransport[T any](t transport.Transport) Option[T] {
	return func(a *Adapter[T]) {
		a.transport = t
	}
}

// WithIDField names the field holding the identifier. Ignored when WithIDOf
// is given.
func WithIDField[T any](field string) Option[T] {
	return func(a *Adapter[T]) {
		a.idField = field
	}
}

// WithIDOf sets the function that extracts the identifier of an entity.
func WithIDOf[T any](idOf func(T) any) Option[T] {
	return func(a *Adapter[T]) {
		a.idOf = idOf
	}
}

// WithOnError registers the hook called when op fails.
func WithOnError[T any](op Operation, hook func()) Option[T] {
	return func(a *Adapter[T]) {
		a.onError[op] = hook
	}
}

// WithOnSuccess registers the hook called when op succeeds.
func WithOnSuccess[T any](op Operation, hook func()) Option[T] {
	return func(a *Adapter[T]) {
		a.onSuccess[op] = hook
	}
}

func WithStrategy[T any](strategy Strategy) Option[T] {
	return func(a *Adapter[T]) {
		a.strategy = strategy
	}
}

func WithEntitiesContainer[T any](factory reactive.Factory[[]T]) Option[T] {
	return func(a *Adapter[T]) {
		a.entitiesFactory = factory
	}
}

func WithLoadingContainer[T any](factory reactive.Factory[bool]) Option[T] {
	return func(a *Adapter[T]) {
		a.loadingFactory = factory
	}
}

func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(a *Adapter[T]) {
		a.logger = logger
	}
}
