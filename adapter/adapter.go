// Package adapter keeps a local collection of entities in sync with a REST
// resource.
//
// An Adapter derives the resource path from the entity name, performs CRUD
// and query requests through a transport.Transport and merges every response
// into an ordered collection indexed by id. Failures never escape: they are
// logged, reported to the per-operation error hook and replaced by a neutral
// result.
//
// The collection and the loading flag are published through reactive
// containers, so observers can bind to them:
//
//	users := adapter.Use[adapter.Entity]("user")
//	state := users.State(nil)
//	state.Entities.Subscribe(func(e reactive.Event[[]adapter.Entity]) { ... })
//	users.Actions.FetchAll(ctx)
package adapter

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/go-json-experiment/json"

	"github.com/fulldump/entitycache/collection"
	"github.com/fulldump/entitycache/logging"
	"github.com/fulldump/entitycache/reactive"
	"github.com/fulldump/entitycache/transport"
	"github.com/fulldump/entitycache/utils"
)

// Entity is the schemaless entity: a JSON object.
type Entity = map[string]any

// Params are the query parameters of a Query request.
type Params = map[string]any

type Operation string

const (
	OpFetchAll  Operation = "fetchAll"
	OpFetchByID Operation = "fetchById"
	OpCreate    Operation = "create"
	OpUpdate    Operation = "update"
	OpRemove    Operation = "remove"
	OpQuery     Operation = "query"
)

// Strategy selects how collection changes reach the entities container.
type Strategy string

const (
	// Replace publishes a new slice on every change.
	Replace Strategy = "replace"
	// Mutate splices every change into the slice held by the container.
	Mutate Strategy = "mutate"
)

const DefaultIDField = "id"

type Adapter[T any] struct {
	name      string
	path      string
	transport transport.Transport
	idField   string
	idOf      func(T) any
	onError   map[Operation]func()
	onSuccess map[Operation]func()
	strategy  Strategy
	logger    *slog.Logger

	entitiesFactory reactive.Factory[[]T]
	loadingFactory  reactive.Factory[bool]

	// mu guards rows, loading and outbox. It is never held while waiting
	// for the transport nor while notifying subscribers.
	mu       sync.Mutex
	rows     *collection.Collection[T]
	loading  bool
	outbox   []func()
	flushing sync.Mutex

	entities   reactive.Container[[]T]
	loadingRef reactive.Container[bool]
}

func New[T any](name string, opts ...Option[T]) *Adapter[T] {
	a := &Adapter[T]{
		name:            name,
		path:            name + "s",
		idField:         DefaultIDField,
		onError:         map[Operation]func(){},
		onSuccess:       map[Operation]func(){},
		strategy:        Replace,
		logger:          logging.Nop(),
		entitiesFactory: reactive.RefFactory[[]T](),
		loadingFactory:  reactive.RefFactory[bool](),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.transport == nil {
		a.transport = transport.NewHTTP(transport.DefaultBaseURL)
	}
	if a.idOf == nil {
		a.idOf = fieldID[T](a.idField)
	}
	a.logger = a.logger.With("resource", a.path)

	a.rows = collection.New(a.keyOf)
	a.entities = a.entitiesFactory([]T{})
	a.loadingRef = a.loadingFactory(false)

	if a.strategy == Mutate {
		a.rows.Watch(func(change collection.Change[T]) {
			a.outbox = append(a.outbox, func() {
				a.entities.Mutate(func(v *[]T) {
					collection.Apply(v, change)
				})
			})
		})
	}

	return a
}

func fieldID[T any](field string) func(T) any {
	return func(v T) any {
		if m, ok := any(v).(map[string]any); ok {
			return m[field]
		}
		return utils.Object(v)[field]
	}
}

func (a *Adapter[T]) keyOf(v T) string {
	return collection.NormalizeID(a.idOf(v))
}

func (a *Adapter[T]) Name() string {
	return a.name
}

// Path is the resource path requests are sent to.
func (a *Adapter[T]) Path() string {
	return a.path
}

// FindByID looks id up in the local collection. It never touches the
// transport.
func (a *Adapter[T]) FindByID(id any) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows.Get(collection.NormalizeID(id))
}

// Entities returns a copy of the local collection in order.
func (a *Adapter[T]) Entities() []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows.Values()
}

func (a *Adapter[T]) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *Adapter[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows.Len()
}

// Where filters the local collection with a connor filter, for example
// {"age": {"$gt": 30}}.
func (a *Adapter[T]) Where(filter map[string]any) ([]T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows.Where(filter)
}

// AddIndex keeps the entities ordered by fields. Prefix a field with "-" to
// sort it in descending order.
func (a *Adapter[T]) AddIndex(name string, fields ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows.AddIndex(name, fields...)
}

// Ascend calls f with the entities in the order of index name until f
// returns false.
func (a *Adapter[T]) Ascend(name string, f func(T) bool) error {
	return a.traverse(name, false, f)
}

// Descend is Ascend in reverse order.
func (a *Adapter[T]) Descend(name string, f func(T) bool) error {
	return a.traverse(name, true, f)
}

func (a *Adapter[T]) traverse(name string, reverse bool, f func(T) bool) error {
	a.mu.Lock()
	index, exists := a.rows.Indexes[name]
	if !exists {
		a.mu.Unlock()
		return &IndexNotFoundError{Name: name}
	}
	values := make([]T, 0, index.Len())
	index.Traverse(reverse, func(row *collection.Row[T]) bool {
		values = append(values, row.Value)
		return true
	})
	a.mu.Unlock()

	for _, v := range values {
		if !f(v) {
			break
		}
	}
	return nil
}

// commit applies f to the collection and queues the resulting
// notifications.
func (a *Adapter[T]) commit(f func(rows *collection.Collection[T])) {
	a.mu.Lock()
	f(a.rows)
	if a.strategy == Replace {
		snapshot := a.rows.Values()
		a.outbox = append(a.outbox, func() {
			a.entities.Set(snapshot)
		})
	}
	a.mu.Unlock()

	a.flush()
}

func (a *Adapter[T]) setLoading(loading bool) {
	a.mu.Lock()
	a.setLoadingLocked(loading)
	a.mu.Unlock()

	a.flush()
}

func (a *Adapter[T]) setLoadingLocked(loading bool) {
	a.loading = loading
	a.outbox = append(a.outbox, func() {
		a.loadingRef.Set(loading)
	})
}

// flush delivers queued notifications in order. Only one goroutine delivers
// at a time; a notification queued while another goroutine (or a subscriber
// of this one) is delivering is picked up by that delivery loop.
func (a *Adapter[T]) flush() {
	for {
		if !a.flushing.TryLock() {
			return
		}
		for {
			a.mu.Lock()
			if len(a.outbox) == 0 {
				a.mu.Unlock()
				break
			}
			next := a.outbox[0]
			a.outbox = a.outbox[1:]
			a.mu.Unlock()

			next()
		}
		a.flushing.Unlock()

		a.mu.Lock()
		pending := len(a.outbox) > 0
		a.mu.Unlock()
		if !pending {
			return
		}
	}
}

// finish ends an operation: clears the loading flag and reports the result.
func (a *Adapter[T]) finish(ctx context.Context, op Operation, err error) {
	a.setLoading(false)

	if err != nil {
		a.logger.ErrorContext(ctx, "entity operation failed", "op", string(op), "error", err)
		if hook := a.onError[op]; hook != nil {
			hook()
		}
		return
	}

	a.logger.DebugContext(ctx, "entity operation done", "op", string(op))
	if hook := a.onSuccess[op]; hook != nil {
		hook()
	}
}

func decodeOne[T any](payload []byte) (T, bool, error) {
	var v T
	if isEmpty(payload) {
		return v, false, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, false, &DecodeError{Err: err}
	}
	return v, true, nil
}

func decodeList[T any](payload []byte) ([]T, error) {
	list := []T{}
	if isEmpty(payload) {
		return list, nil
	}
	if err := json.Unmarshal(payload, &list); err != nil {
		return []T{}, &DecodeError{Err: err}
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// isEmpty reports an absent body or a literal null.
func isEmpty(payload []byte) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
