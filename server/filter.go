package server

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-json-experiment/json"

	"github.com/fulldump/entitycache/collection"
)

// Reserved query parameters.
const (
	ParamFilter = "filter"
	ParamSort   = "sort"
)

// Filter selects and orders the items of a list request.
//
// Plain query parameters match fields by their printed value (?status=active).
// Repeating a parameter matches any of its values. The filter parameter
// carries a JSON connor filter (?filter={"age":{"$gt":30}}) and sort names
// the field to order by, prefixed with "-" for descending order.
type Filter struct {
	Equals map[string][]string
	Match  map[string]any
	Sort   string
}

func ParseFilter(query url.Values) (Filter, error) {
	f := Filter{
		Equals: map[string][]string{},
	}

	for key, values := range query {
		switch key {
		case ParamFilter:
			if err := json.Unmarshal([]byte(query.Get(key)), &f.Match); err != nil {
				return f, fmt.Errorf("%w: filter: %w", ErrBadRequest, err)
			}
		case ParamSort:
			f.Sort = query.Get(key)
		default:
			normalized := make([]string, len(values))
			for i, value := range values {
				normalized[i] = normalizeValue(value)
			}
			f.Equals[key] = normalized
		}
	}

	return f, nil
}

func (f Filter) Matches(item Item) (bool, error) {
	for field, values := range f.Equals {
		if !slices.Contains(values, normalizeValue(item[field])) {
			return false, nil
		}
	}
	if len(f.Match) == 0 {
		return true, nil
	}
	return collection.Match(f.Match, item)
}

// normalizeValue renders v for equality matching. Numbers compare by value
// whether they arrive as numbers or as decimal strings.
func normalizeValue(v any) string {
	s := collection.NormalizeID(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return collection.NormalizeID(f)
	}
	return s
}
