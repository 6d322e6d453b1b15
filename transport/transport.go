// Package transport moves entities between the cache and a REST backend.
package transport

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
)

// Transport performs the requests the entity adapter needs. Payloads are
// raw JSON; an empty or null body is returned as a nil payload.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Put(ctx context.Context, path string, body any) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

var (
	ErrTransport      = errors.New("transport failure")
	ErrNotImplemented = errors.New("not implemented")
)

// StatusError reports a response with a non 2xx status code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// EncodeParams renders query parameters. Slices produce one value per element.
func EncodeParams(params map[string]any) url.Values {
	values := url.Values{}
	for _, key := range slices.Sorted(maps.Keys(params)) {
		switch v := params[key].(type) {
		case nil:
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []any:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Add(key, fmt.Sprint(v))
		}
	}
	return values
}

// JoinPath builds "{path}/{id}" escaping id as a single path segment.
func JoinPath(path, id string) string {
	return path + "/" + url.PathEscape(id)
}
