package utils

import (
	"testing"

	"github.com/fulldump/biff"
)

func TestGetKeys(t *testing.T) {
	keys := GetKeys(map[string]int{"users": 1, "albums": 2, "posts": 3})
	biff.AssertEqual(keys, []string{"albums", "posts", "users"})
}

func TestObject(t *testing.T) {

	biff.Alternative("map", func(a *biff.A) {
		m := map[string]any{"id": 1}
		biff.AssertEqual(Object(m)["id"], 1)
	})

	biff.Alternative("struct", func(a *biff.A) {
		type user struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		o := Object(user{ID: 7, Name: "Fulanez"})
		biff.AssertEqual(o["id"], float64(7))
		biff.AssertEqual(o["name"], "Fulanez")
	})

	biff.Alternative("not an object", func(a *biff.A) {
		biff.AssertNil(Object([]int{1, 2}))
	})
}
