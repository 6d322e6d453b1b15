package collection

import "slices"

type Op string

const (
	OpAppend  Op = "append"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
	OpReset   Op = "reset"
)

// Change describes one mutation of a Collection in terms of positions, so it
// can be replayed on a plain slice holding the same values.
type Change[T any] struct {
	Op     Op
	I      int
	Value  T
	Values []T // only for OpReset
}

// Apply replays change on s in place.
func Apply[T any](s *[]T, change Change[T]) {
	switch change.Op {
	case OpAppend:
		*s = append(*s, change.Value)
	case OpReplace:
		(*s)[change.I] = change.Value
	case OpRemove:
		*s = slices.Delete(*s, change.I, change.I+1)
	case OpReset:
		*s = append((*s)[:0], change.Values...)
	}
}
