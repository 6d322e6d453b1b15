package transport

import (
	"context"
	"net/url"
)

// Funcs adapts plain functions to a Transport. A nil function fails with
// ErrNotImplemented.
type Funcs struct {
	GetFunc    func(ctx context.Context, path string, query url.Values) ([]byte, error)
	PostFunc   func(ctx context.Context, path string, body any) ([]byte, error)
	PutFunc    func(ctx context.Context, path string, body any) ([]byte, error)
	DeleteFunc func(ctx context.Context, path string) error
}

func (f *Funcs) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if f.GetFunc == nil {
		return nil, ErrNotImplemented
	}
	return f.GetFunc(ctx, path, query)
}

func (f *Funcs) Post(ctx context.Context, path string, body any) ([]byte, error) {
	if f.PostFunc == nil {
		return nil, ErrNotImplemented
	}
	return f.PostFunc(ctx, path, body)
}

func (f *Funcs) Put(ctx context.Context, path string, body any) ([]byte, error) {
	if f.PutFunc == nil {
		return nil, ErrNotImplemented
	}
	return f.PutFunc(ctx, path, body)
}

func (f *Funcs) Delete(ctx context.Context, path string) error {
	if f.DeleteFunc == nil {
		return ErrNotImplemented
	}
	return f.DeleteFunc(ctx, path)
}
