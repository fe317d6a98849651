package catalog

import (
	"context"
)

// Item is one raw offer record as returned by a catalog service.
// Fields are optional and may have any shape; consumers must not assume
// nested structures are present or well formed.
type Item map[string]any

// Catalog is a product search service queried once per keyword.
type Catalog interface {
	Name() string
	Search(ctx context.Context, keyword string, itemCount int) ([]Item, error)
}

// Lookup walks a path of object keys and array indexes through an item.
// Path elements are either string (object key) or int (array index).
// It returns false as soon as any step is missing or has the wrong type.
func Lookup(item Item, path ...any) (any, bool) {
	var cur any = map[string]any(item)
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := m[key]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			if arr[key] == nil {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

// LookupValue is Lookup with a type assertion on the final value.
func LookupValue[T any](item Item, path ...any) (T, bool) {
	var zero T
	v, ok := Lookup(item, path...)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
