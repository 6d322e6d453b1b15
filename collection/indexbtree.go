package collection

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/google/btree"

	"github.com/fulldump/entitycache/utils"
)

// IndexBtree keeps rows ordered by one or more fields. A field prefixed with
// "-" is sorted in descending order. Duplicated values are allowed; ties are
// broken by key.
type IndexBtree[T any] struct {
	Btree   *btree.BTreeG[*RowOrdered[T]]
	Fields  []string
	entries map[string]*RowOrdered[T]
}

type RowOrdered[T any] struct {
	*Row[T]
	Values []any
}

func NewIndexBTree[T any](fields ...string) *IndexBtree[T] {

	index := btree.NewG(32, func(a, b *RowOrdered[T]) bool {
		for i, valA := range a.Values {
			c := compareValues(valA, b.Values[i])
			if c == 0 {
				continue
			}
			if strings.HasPrefix(fields[i], "-") {
				return c > 0
			}
			return c < 0
		}
		return a.Key < b.Key
	})

	return &IndexBtree[T]{
		Btree:   index,
		Fields:  fields,
		entries: map[string]*RowOrdered[T]{},
	}
}

func (b *IndexBtree[T]) AddRow(r *Row[T]) {
	data := utils.Object(r.Value)

	values := make([]any, 0, len(b.Fields))
	for _, field := range b.Fields {
		values = append(values, data[strings.TrimPrefix(field, "-")])
	}

	item := &RowOrdered[T]{Row: r, Values: values}
	b.entries[r.Key] = item
	b.Btree.ReplaceOrInsert(item)
}

func (b *IndexBtree[T]) RemoveRow(r *Row[T]) {
	item, exists := b.entries[r.Key]
	if !exists {
		return
	}
	delete(b.entries, r.Key)
	b.Btree.Delete(item)
}

func (b *IndexBtree[T]) Reset() {
	b.Btree.Clear(false)
	clear(b.entries)
}

func (b *IndexBtree[T]) Len() int {
	return b.Btree.Len()
}

// Traverse walks the rows in index order, or in reverse order, until f
// returns false.
func (b *IndexBtree[T]) Traverse(reverse bool, f func(*Row[T]) bool) {
	iterator := func(r *RowOrdered[T]) bool {
		return f(r.Row)
	}
	if reverse {
		b.Btree.Descend(iterator)
	} else {
		b.Btree.Ascend(iterator)
	}
}

// compareValues orders nil first, then booleans, numbers and strings. Other
// kinds are compared by their printed form.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch a := a.(type) {
	case nil:
		return 0
	case bool:
		bb := b.(bool)
		switch {
		case a == bb:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case string:
		return strings.Compare(a, b.(string))
	}

	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		return cmp.Compare(fa, fb)
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	}
	if _, ok := toFloat(v); ok {
		return 2
	}
	return 4
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
