package adapter

import (
	"context"
	"maps"

	"github.com/fulldump/entitycache/collection"
	"github.com/fulldump/entitycache/transport"
	"github.com/fulldump/entitycache/utils"
)

// FetchAll replaces the local collection with the remote list. On failure
// the local collection is kept. It returns a copy of the local collection.
func (a *Adapter[T]) FetchAll(ctx context.Context) []T {
	a.setLoading(true)

	payload, err := a.transport.Get(ctx, a.path, nil)
	var entities []T
	if err == nil {
		entities, err = decodeList[T](payload)
	}
	if err == nil {
		a.commit(func(rows *collection.Collection[T]) {
			rows.Reset(entities)
		})
	}

	a.finish(ctx, OpFetchAll, err)
	return a.Entities()
}

// FetchByID reads one entity and stores it under id, replacing the entity
// already stored under id or appending it.
func (a *Adapter[T]) FetchByID(ctx context.Context, id any) (T, bool) {
	a.setLoading(true)

	key := collection.NormalizeID(id)
	payload, err := a.transport.Get(ctx, transport.JoinPath(a.path, key), nil)
	var entity T
	var found bool
	if err == nil {
		entity, found, err = a.store(payload, func(rows *collection.Collection[T], entity T) {
			rows.Upsert(key, entity)
		})
	}

	a.finish(ctx, OpFetchByID, err)
	return entity, found
}

// Create posts entity and appends the entity returned by the server. An
// empty or zero id is left out of the request so the server assigns one.
func (a *Adapter[T]) Create(ctx context.Context, entity T) (T, bool) {
	a.setLoading(true)

	payload, err := a.transport.Post(ctx, a.path, a.createBody(entity))
	var created T
	var found bool
	if err == nil {
		created, found, err = a.store(payload, func(rows *collection.Collection[T], created T) {
			rows.Append(created)
		})
	}

	a.finish(ctx, OpCreate, err)
	return created, found
}

func (a *Adapter[T]) createBody(entity T) any {
	switch a.keyOf(entity) {
	case "", "0":
	default:
		return entity
	}

	object := maps.Clone(utils.Object(entity))
	if object == nil {
		return entity
	}
	delete(object, a.idField)
	return object
}

// Update puts entity and stores the entity returned by the server, in place
// when its id is already known, at the end otherwise.
func (a *Adapter[T]) Update(ctx context.Context, entity T) (T, bool) {
	a.setLoading(true)

	path := transport.JoinPath(a.path, a.keyOf(entity))
	payload, err := a.transport.Put(ctx, path, entity)
	var updated T
	var found bool
	if err == nil {
		updated, found, err = a.store(payload, func(rows *collection.Collection[T], updated T) {
			rows.Append(updated)
		})
	}

	a.finish(ctx, OpUpdate, err)
	return updated, found
}

// Remove deletes id remotely and then locally. It returns a copy of the local
// collection.
func (a *Adapter[T]) Remove(ctx context.Context, id any) []T {
	a.setLoading(true)

	key := collection.NormalizeID(id)
	err := a.transport.Delete(ctx, transport.JoinPath(a.path, key))
	if err == nil {
		a.commit(func(rows *collection.Collection[T]) {
			rows.RemoveKey(key)
		})
	}

	a.finish(ctx, OpRemove, err)
	return a.Entities()
}

// Query lists the entities matching params and merges each of them into the
// local collection. It returns the server response, or an empty list on
// failure.
func (a *Adapter[T]) Query(ctx context.Context, params Params) []T {
	a.setLoading(true)

	payload, err := a.transport.Get(ctx, a.path, transport.EncodeParams(params))
	var entities []T
	if err == nil {
		entities, err = decodeList[T](payload)
	}
	if err == nil && len(entities) > 0 {
		a.commit(func(rows *collection.Collection[T]) {
			for _, entity := range entities {
				rows.Append(entity)
			}
		})
	}

	a.finish(ctx, OpQuery, err)
	if err != nil {
		return []T{}
	}
	return entities
}

// store decodes a single entity response and merges it with f. An empty
// payload is not an error and leaves the collection untouched.
func (a *Adapter[T]) store(payload []byte, f func(rows *collection.Collection[T], entity T)) (T, bool, error) {
	entity, found, err := decodeOne[T](payload)
	if err != nil || !found {
		var zero T
		return zero, false, err
	}

	a.commit(func(rows *collection.Collection[T]) {
		f(rows, entity)
	})
	return entity, true, nil
}
