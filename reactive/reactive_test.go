package reactive

import (
	"testing"

	"github.com/fulldump/biff"
)

func TestRef(t *testing.T) {

	biff.Alternative("Ref", func(a *biff.A) {

		r := NewRef([]int{1, 2})
		events := []Event[[]int]{}
		cancel := r.Subscribe(func(e Event[[]int]) {
			events = append(events, e)
		})

		a.Alternative("Set", func(a *biff.A) {
			r.Set([]int{3})
			biff.AssertEqual(r.Get(), []int{3})
			biff.AssertEqual(len(events), 1)
			biff.AssertEqual(events[0].Type, EventSet)
		})

		a.Alternative("Mutate keeps the backing array", func(a *biff.A) {
			before := r.Get()
			r.Mutate(func(v *[]int) {
				(*v)[0] = 10
			})
			biff.AssertEqual(before[0], 10)
			biff.AssertEqual(len(events), 1)
			biff.AssertEqual(events[0].Type, EventMutate)
			biff.AssertEqual(events[0].Value, []int{10, 2})
		})

		a.Alternative("Cancel subscription", func(a *biff.A) {
			cancel()
			r.Set(nil)
			biff.AssertEqual(len(events), 0)
		})
	})
}

func TestRefFactory(t *testing.T) {
	factory := RefFactory[bool]()
	c := factory(true)
	biff.AssertTrue(c.Get())

	_, isRef := c.(*Ref[bool])
	biff.AssertTrue(isRef)
}

func TestRef_SubscriberCanRead(t *testing.T) {
	r := NewRef(0)
	seen := -1
	r.Subscribe(func(e Event[int]) {
		seen = r.Get()
	})
	r.Set(5)
	if seen != 5 {
		t.Fatalf("subscriber read %d, expected 5", seen)
	}
}
