// Package collection turns a collection and a per-item render function into
// rendered nodes. It has two consumption modes:
//
//   - RenderList materialises one node per item, in input order.
//   - RenderFunction hands the per-item function back to a host component
//     that decides when, how often and for which items to call it, such as
//     a combobox that only renders the options matching the current query.
//
// A render function takes either the item or the item and its index. The
// choice is made at the call site with WithItem or WithItemAndIndex; Adapt
// resolves it from an untyped function value and rejects anything else with
// ErrRenderArity before rendering starts.
//
// The package holds no state and every function is safe for concurrent use.
package collection
