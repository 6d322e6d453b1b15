package collection

import (
	"testing"

	"github.com/fulldump/biff"
)

type JSON = map[string]any

func newTestCollection() *Collection[JSON] {
	return New(func(v JSON) string {
		return NormalizeID(v["id"])
	})
}

// assertIndexConsistent checks that every row is indexed under its key with
// its real position.
func assertIndexConsistent[T any](t *testing.T, c *Collection[T]) {
	t.Helper()

	if c.Index.Len() != len(c.Rows) {
		t.Fatalf("index has %d entries, collection has %d rows", c.Index.Len(), len(c.Rows))
	}
	for i, row := range c.Rows {
		if row.I != i {
			t.Fatalf("row %q has position %d, expected %d", row.Key, row.I, i)
		}
		indexed, exists := c.Index.Get(row.Key)
		if !exists || indexed != row {
			t.Fatalf("row %q is not indexed", row.Key)
		}
		if c.keyOf(row.Value) != row.Key {
			t.Fatalf("row %q holds a value with key %q", row.Key, c.keyOf(row.Value))
		}
	}
}

func TestCollection(t *testing.T) {

	biff.Alternative("Collection", func(a *biff.A) {

		c := newTestCollection()
		c.Append(JSON{"id": 1, "name": "a"})
		c.Append(JSON{"id": 2, "name": "b"})
		c.Append(JSON{"id": 3, "name": "c"})
		assertIndexConsistent(t, c)
		biff.AssertEqual(c.Len(), 3)

		a.Alternative("Get by normalized key", func(a *biff.A) {
			v, exists := c.Get("2")
			biff.AssertTrue(exists)
			biff.AssertEqual(v["name"], "b")
			biff.AssertEqual(c.Position(NormalizeID(float64(3))), 2)
			biff.AssertEqual(c.Position("4"), -1)
		})

		a.Alternative("Append existing key replaces in place", func(a *biff.A) {
			change := c.Append(JSON{"id": "2", "name": "B"})
			biff.AssertEqual(change.Op, OpReplace)
			biff.AssertEqual(change.I, 1)
			biff.AssertEqual(c.Len(), 3)
			biff.AssertEqual(c.Values()[1]["name"], "B")
			assertIndexConsistent(t, c)
		})

		a.Alternative("Upsert by requested key", func(a *biff.A) {
			change := c.Upsert("1", JSON{"id": 1, "name": "A"})
			biff.AssertEqual(change.Op, OpReplace)
			biff.AssertEqual(change.I, 0)

			change = c.Upsert("9", JSON{"id": 9, "name": "z"})
			biff.AssertEqual(change.Op, OpAppend)
			biff.AssertEqual(change.I, 3)
			assertIndexConsistent(t, c)
		})

		a.Alternative("Replace changing key drops the colliding row", func(a *biff.A) {
			change, err := c.Replace(2, JSON{"id": 1, "name": "moved"})
			biff.AssertNil(err)
			biff.AssertEqual(change.Op, OpReplace)
			biff.AssertEqual(change.I, 1)
			biff.AssertEqual(c.Len(), 2)
			biff.AssertEqual(c.Values()[1]["name"], "moved")
			assertIndexConsistent(t, c)
		})

		a.Alternative("Replace out of range", func(a *biff.A) {
			_, err := c.Replace(3, JSON{"id": 4})
			biff.AssertNotNil(err)
		})

		a.Alternative("Remove shifts positions", func(a *biff.A) {
			change, removed := c.RemoveKey("1")
			biff.AssertTrue(removed)
			biff.AssertEqual(change.Op, OpRemove)
			biff.AssertEqual(change.I, 0)
			biff.AssertEqual(c.Position("2"), 0)
			biff.AssertEqual(c.Position("3"), 1)
			assertIndexConsistent(t, c)

			a.Alternative("Remove absent is a no-op", func(a *biff.A) {
				_, removed := c.RemoveKey("1")
				biff.AssertFalse(removed)
				biff.AssertEqual(c.Len(), 2)
			})
		})

		a.Alternative("Reset rebuilds the index", func(a *biff.A) {
			c.Reset([]JSON{{"id": 7}, {"id": 8}, {"id": 7, "name": "again"}})
			biff.AssertEqual(c.Len(), 2)
			biff.AssertFalse(c.Has("1"))
			v, _ := c.Get("7")
			biff.AssertEqual(v["name"], "again")
			assertIndexConsistent(t, c)
		})

		a.Alternative("Where", func(a *biff.A) {
			result, err := c.Where(JSON{"name": "b"})
			biff.AssertNil(err)
			biff.AssertEqualJson(result, []JSON{{"id": 2, "name": "b"}})
		})
	})
}

func TestCollection_Watch(t *testing.T) {

	c := newTestCollection()
	mirror := []JSON{}
	c.Watch(func(change Change[JSON]) {
		Apply(&mirror, change)
	})

	c.Append(JSON{"id": 1})
	c.Append(JSON{"id": 2})
	c.Append(JSON{"id": 3})
	c.Upsert("2", JSON{"id": 2, "v": true})
	c.RemoveKey("1")
	c.Replace(1, JSON{"id": 2})
	c.Append(JSON{"id": 4})

	biff.AssertEqual(mirror, c.Values())

	c.Reset([]JSON{{"id": 10}})
	biff.AssertEqual(mirror, c.Values())
}

func TestNormalizeID(t *testing.T) {
	biff.AssertEqual(NormalizeID(nil), "")
	biff.AssertEqual(NormalizeID(" abc "), "abc")
	biff.AssertEqual(NormalizeID(1), "1")
	biff.AssertEqual(NormalizeID(int64(1)), "1")
	biff.AssertEqual(NormalizeID(float64(1)), "1")
	biff.AssertEqual(NormalizeID(1.5), "1.5")
	biff.AssertEqual(NormalizeID(float64(1000000)), "1000000")
}
