package collection

import (
	"fmt"
	"reflect"
)

// RenderFunc is a per-item render function of arity one or two. The zero
// value is invalid.
type RenderFunc[T, N any] struct {
	item    func(T) N
	indexed func(T, int) N
}

// WithItem builds a render function that only receives the item.
func WithItem[T, N any](fn func(item T) N) RenderFunc[T, N] {
	return RenderFunc[T, N]{item: fn}
}

// WithItemAndIndex builds a render function that receives the item and its
// position.
func WithItemAndIndex[T, N any](fn func(item T, index int) N) RenderFunc[T, N] {
	return RenderFunc[T, N]{indexed: fn}
}

// Adapt resolves an untyped function into a RenderFunc. Only func(T) N and
// func(T, int) N are accepted. A function of arity one or two with other
// types fails with ErrRenderSignature; anything else with ErrRenderArity.
func Adapt[T, N any](fn any) (RenderFunc[T, N], error) {
	switch f := fn.(type) {
	case func(T) N:
		if f != nil {
			return WithItem(f), nil
		}
	case func(T, int) N:
		if f != nil {
			return WithItemAndIndex(f), nil
		}
	case RenderFunc[T, N]:
		if f.Arity() != 0 {
			return f, nil
		}
	}
	if rt := reflect.TypeOf(fn); rt != nil && rt.Kind() == reflect.Func && !rt.IsVariadic() {
		if in := rt.NumIn(); in == 1 || in == 2 {
			want := reflect.TypeOf((*func(T) N)(nil)).Elem()
			if in == 2 {
				want = reflect.TypeOf((*func(T, int) N)(nil)).Elem()
			}
			if rt != want {
				return RenderFunc[T, N]{}, contractErr("collection.Adapt", -1, fmt.Errorf("%w: want %s, got %s", ErrRenderSignature, want, rt))
			}
		}
	}
	return RenderFunc[T, N]{}, contractErr("collection.Adapt", -1, fmt.Errorf("%w, got %T", ErrRenderArity, fn))
}

// Arity returns 1 or 2 for a valid function and 0 otherwise.
func (f RenderFunc[T, N]) Arity() int {
	switch {
	case f.item != nil && f.indexed == nil:
		return 1
	case f.indexed != nil && f.item == nil:
		return 2
	default:
		return 0
	}
}

// Call invokes the function. One-argument functions ignore index.
func (f RenderFunc[T, N]) Call(item T, index int) (N, error) {
	var zero N
	var node N
	switch f.Arity() {
	case 1:
		node = f.item(item)
	case 2:
		node = f.indexed(item, index)
	default:
		return zero, contractErr("collection.Call", -1, ErrRenderArity)
	}
	if isNil(node) {
		return zero, contractErr("collection.Call", index, ErrNotComponent)
	}
	return node, nil
}

// ItemFunc is the function RenderFunction hands to a host component.
type ItemFunc[T, N any] func(item T, index int) (N, error)

// RenderList renders every item in order. An empty collection yields an
// empty, non-nil slice. The arity is checked before any item is rendered.
func RenderList[T, N any](items []T, fn RenderFunc[T, N]) ([]N, error) {
	if fn.Arity() == 0 {
		return nil, contractErr("collection.RenderList", -1, ErrRenderArity)
	}
	out := make([]N, 0, len(items))
	for i, item := range items {
		node, err := fn.Call(item, i)
		if err != nil {
			return nil, contractErr("collection.RenderList", i, unwrapContract(err))
		}
		out = append(out, node)
	}
	return out, nil
}

// RenderFunction validates fn and returns it unchanged in behaviour: calling
// the result with (x, i) is the same as calling fn with (x, i).
func RenderFunction[T, N any](fn RenderFunc[T, N]) (ItemFunc[T, N], error) {
	if fn.Arity() == 0 {
		return nil, contractErr("collection.RenderFunction", -1, ErrRenderArity)
	}
	return fn.Call, nil
}

// RenderValue renders an untyped collection. See Items for what counts as
// iterable.
func RenderValue[N any](collection any, fn RenderFunc[any, N]) ([]N, error) {
	if fn.Arity() == 0 {
		return nil, contractErr("collection.RenderValue", -1, ErrRenderArity)
	}
	items, err := Items(collection)
	if err != nil {
		return nil, err
	}
	return RenderList(items, fn)
}

func unwrapContract(err error) error {
	if ce, ok := err.(*ContractError); ok {
		return ce.Err
	}
	return err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
