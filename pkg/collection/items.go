package collection

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Entry is one key/value pair of a map collection.
type Entry struct {
	Key   any
	Value any
}

// Items flattens v into a slice:
//
//   - slices and arrays yield their elements
//   - maps yield Entry values sorted by formatted key
//   - strings yield one string per character
//   - nil yields an empty slice
//
// Any other value fails with ErrNotIterable.
func Items(v any) ([]any, error) {
	if v == nil {
		return []any{}, nil
	}
	if s, ok := v.(string); ok {
		out := make([]any, 0, len(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		out := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out = append(out, Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
		}
		slices.SortFunc(out, func(a, b any) int {
			return cmp.Compare(fmt.Sprint(a.(Entry).Key), fmt.Sprint(b.(Entry).Key))
		})
		return out, nil
	case reflect.String:
		return Items(rv.String())
	default:
		return nil, contractErr("collection.Items", -1, fmt.Errorf("%w: %T", ErrNotIterable, v))
	}
}
