package collection

// IndexMap resolves a key to its row.
type IndexMap[T any] struct {
	Entries map[string]*Row[T]
}

func NewIndexMap[T any]() *IndexMap[T] {
	return &IndexMap[T]{
		Entries: map[string]*Row[T]{},
	}
}

func (i *IndexMap[T]) Get(key string) (*Row[T], bool) {
	row, exists := i.Entries[key]
	return row, exists
}

func (i *IndexMap[T]) AddRow(row *Row[T]) {
	i.Entries[row.Key] = row
}

func (i *IndexMap[T]) RemoveRow(row *Row[T]) {
	if i.Entries[row.Key] == row {
		delete(i.Entries, row.Key)
	}
}

func (i *IndexMap[T]) Reset() {
	clear(i.Entries)
}

func (i *IndexMap[T]) Len() int {
	return len(i.Entries)
}
