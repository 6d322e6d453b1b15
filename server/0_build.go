package server

import (
	"context"
	"log/slog"

	"github.com/fulldump/box"
)

// Build exposes the store as a REST API:
//
//	GET    /{resource}       list items (see Filter)
//	POST   /{resource}       create an item
//	GET    /{resource}/{id}  read an item
//	PUT    /{resource}/{id}  replace (or create) an item
//	PATCH  /{resource}/{id}  merge patch an item
//	DELETE /{resource}/{id}  delete an item
func Build(s *Store, logger *slog.Logger) *box.B {

	b := box.NewBox()

	b.Resource("/{resource}").
		WithActions(
			box.Get(listItems),
			box.Post(createItem),
		)

	b.Resource("/{resource}/{id}").
		WithActions(
			box.Get(getItem),
			box.Put(replaceItem),
			box.Patch(patchItem),
			box.Delete(deleteItem),
		)

	b.WithInterceptors(
		AccessLog(logger),
		PrettyErrorInterceptor,
		RecoverFromPanic(logger),
		injectStore(s),
	)

	return b
}

const contextStoreKey = "6f1d2b9c-8a3e-11ef-b7c4-3bd0a1e9f2a7"

func injectStore(s *Store) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(SetStore(ctx, s))
		}
	}
}

func SetStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextStoreKey, s)
}

func GetStore(ctx context.Context) *Store {
	s, _ := ctx.Value(contextStoreKey).(*Store)
	return s
}
