package collection

import (
	"errors"
	"fmt"
)

// Contract violations. They indicate a caller bug and abort the render call.
var (
	ErrRenderArity     = errors.New("collection: render function must take (item) or (item, index)")
	ErrRenderSignature = errors.New("collection: render function has the wrong parameter or result types")
	ErrNotIterable     = errors.New("collection: value is not iterable")
	ErrNotComponent    = errors.New("collection: render function must return a component")
)

// ContractError reports which operation and item violated the contract.
// Index is -1 when the violation is not tied to an item.
type ContractError struct {
	Op    string
	Index int
	Err   error
}

func (e *ContractError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: item %d: %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

func contractErr(op string, index int, err error) error {
	return &ContractError{Op: op, Index: index, Err: err}
}
