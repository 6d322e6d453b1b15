package adapter

import (
	"fmt"

	"github.com/fulldump/entitycache/transport"
)

// DecodeError reports a response payload that does not decode into the
// entity type. It counts as a transport failure.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode payload: %s", e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{transport.ErrTransport, e.Err}
}

type IndexNotFoundError struct {
	Name string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index '%s' not found", e.Name)
}
