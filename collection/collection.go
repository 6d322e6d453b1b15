package collection

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/SierraSoftworks/connor"

	"github.com/fulldump/entitycache/utils"
)

// Collection is an ordered set of values unique by key. Rows keep their
// position (I) up to date so a key resolves to a position in O(1).
//
// A Collection is not safe for concurrent use; callers synchronize.
type Collection[T any] struct {
	Rows    []*Row[T]
	Index   *IndexMap[T]
	Indexes map[string]*IndexBtree[T]

	keyOf   func(T) string
	watcher func(Change[T])
}

type Row[T any] struct {
	I     int // position in Rows
	Key   string
	Value T
}

// New returns an empty collection keyed by keyOf.
func New[T any](keyOf func(T) string) *Collection[T] {
	return &Collection[T]{
		Rows:    []*Row[T]{},
		Index:   NewIndexMap[T](),
		Indexes: map[string]*IndexBtree[T]{},
		keyOf:   keyOf,
	}
}

// Watch registers f to receive every change applied to the collection.
func (c *Collection[T]) Watch(f func(Change[T])) {
	c.watcher = f
}

func (c *Collection[T]) emit(change Change[T]) Change[T] {
	if c.watcher != nil {
		c.watcher(change)
	}
	return change
}

func (c *Collection[T]) KeyOf(v T) string {
	return c.keyOf(v)
}

func (c *Collection[T]) Len() int {
	return len(c.Rows)
}

func (c *Collection[T]) Has(key string) bool {
	_, exists := c.Index.Get(key)
	return exists
}

func (c *Collection[T]) Get(key string) (T, bool) {
	row, exists := c.Index.Get(key)
	if !exists {
		var zero T
		return zero, false
	}
	return row.Value, true
}

// Position returns the position of key or -1 when it is not present.
func (c *Collection[T]) Position(key string) int {
	row, exists := c.Index.Get(key)
	if !exists {
		return -1
	}
	return row.I
}

// Values returns a copy of the values in order.
func (c *Collection[T]) Values() []T {
	values := make([]T, len(c.Rows))
	for i, row := range c.Rows {
		values[i] = row.Value
	}
	return values
}

// Traverse calls f for every row in order until f returns false.
func (c *Collection[T]) Traverse(f func(row *Row[T]) bool) {
	for _, row := range c.Rows {
		if !f(row) {
			return
		}
	}
}

// Append adds v at the end. If its key is already present the existing row
// is replaced in place so keys stay unique.
func (c *Collection[T]) Append(v T) Change[T] {
	key := c.keyOf(v)
	if row, exists := c.Index.Get(key); exists {
		return c.replaceRow(row, v)
	}
	return c.addRow(key, v)
}

// Upsert replaces the row stored under key, or appends v when key is absent.
func (c *Collection[T]) Upsert(key string, v T) Change[T] {
	if row, exists := c.Index.Get(key); exists {
		return c.replaceRow(row, v)
	}
	return c.Append(v)
}

// Replace substitutes the value at position i.
func (c *Collection[T]) Replace(i int, v T) (Change[T], error) {
	if i < 0 || i >= len(c.Rows) {
		return Change[T]{}, fmt.Errorf("position %d out of range [0,%d)", i, len(c.Rows))
	}
	return c.replaceRow(c.Rows[i], v), nil
}

// RemoveKey deletes the row stored under key. Rows after it shift down by one.
func (c *Collection[T]) RemoveKey(key string) (Change[T], bool) {
	row, exists := c.Index.Get(key)
	if !exists {
		return Change[T]{}, false
	}
	return c.removeRow(row), true
}

// Reset replaces the whole content with values. Later duplicates of a key
// replace earlier ones in place.
func (c *Collection[T]) Reset(values []T) Change[T] {
	c.Rows = make([]*Row[T], 0, len(values))
	c.Index.Reset()
	for _, index := range c.Indexes {
		index.Reset()
	}

	for _, v := range values {
		key := c.keyOf(v)
		if row, exists := c.Index.Get(key); exists {
			c.unindexRow(row)
			row.Value = v
			c.indexRow(row)
			continue
		}
		row := &Row[T]{I: len(c.Rows), Key: key, Value: v}
		c.Rows = append(c.Rows, row)
		c.indexRow(row)
	}

	return c.emit(Change[T]{Op: OpReset, Values: c.Values()})
}

// Where returns the values matching a connor filter, in order.
func (c *Collection[T]) Where(filter map[string]any) ([]T, error) {
	result := []T{}
	for _, row := range c.Rows {
		match, err := Match(filter, row.Value)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, row.Value)
		}
	}
	return result, nil
}

func (c *Collection[T]) AddIndex(name string, fields ...string) error {
	if _, exists := c.Indexes[name]; exists {
		return fmt.Errorf("index '%s' already exists", name)
	}
	if len(fields) == 0 {
		return fmt.Errorf("index '%s' needs at least one field", name)
	}

	index := NewIndexBTree[T](fields...)
	for _, row := range c.Rows {
		index.AddRow(row)
	}
	c.Indexes[name] = index

	return nil
}

func (c *Collection[T]) addRow(key string, v T) Change[T] {
	row := &Row[T]{I: len(c.Rows), Key: key, Value: v}
	c.Rows = append(c.Rows, row)
	c.indexRow(row)

	return c.emit(Change[T]{Op: OpAppend, I: row.I, Value: v})
}

func (c *Collection[T]) replaceRow(row *Row[T], v T) Change[T] {
	key := c.keyOf(v)
	if key != row.Key {
		// the new key may already belong to another row
		if other, exists := c.Index.Get(key); exists && other != row {
			c.removeRow(other)
		}
	}

	c.unindexRow(row)
	row.Key = key
	row.Value = v
	c.indexRow(row)

	return c.emit(Change[T]{Op: OpReplace, I: row.I, Value: v})
}

func (c *Collection[T]) removeRow(row *Row[T]) Change[T] {
	i := row.I
	c.unindexRow(row)
	c.Rows = slices.Delete(c.Rows, i, i+1)
	for _, r := range c.Rows[i:] {
		r.I--
	}

	return c.emit(Change[T]{Op: OpRemove, I: i, Value: row.Value})
}

func (c *Collection[T]) indexRow(row *Row[T]) {
	c.Index.AddRow(row)
	for _, index := range c.Indexes {
		index.AddRow(row)
	}
}

func (c *Collection[T]) unindexRow(row *Row[T]) {
	c.Index.RemoveRow(row)
	for _, index := range c.Indexes {
		index.RemoveRow(row)
	}
}

// NormalizeID renders an identifier as an index key. Equal numbers and their
// decimal string form produce the same key.
func NormalizeID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Match evaluates a connor filter against the JSON form of value. Both sides
// go through JSON so numbers compare as float64 whatever their Go type.
func Match[T any](filter map[string]any, value T) (bool, error) {
	data := map[string]any{}
	if err := utils.Remarshal(value, &data); err != nil {
		return false, fmt.Errorf("value is not an object: %w", err)
	}
	conditions := map[string]any{}
	if err := utils.Remarshal(filter, &conditions); err != nil {
		return false, fmt.Errorf("filter is not an object: %w", err)
	}
	return connor.Match(conditions, data)
}
