package utils

import (
	"github.com/go-json-experiment/json"
)

// Remarshal copies input into output through its JSON form.
func Remarshal(input any, output any) error {
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, output)
}

// Object returns the JSON object form of v. Maps are returned as is.
func Object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	if err := Remarshal(v, &m); err != nil {
		return nil
	}
	return m
}
