package ui

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-leadform/pkg/collection"
)

// ComboboxConfig configures a filterable single-choice input.
type ComboboxConfig struct {
	ID          string
	Name        string
	Items       []string
	Value       string
	Placeholder string
	Invalid     bool
	// Endpoint, when set, is advertised to client scripts that refresh the
	// option list as the user types.
	Endpoint string
	Class    string
	Attrs    Attrs
}

// Combobox owns its item list and calls the per-item render function only
// for the items that match the current query, in the order they match.
type Combobox struct {
	cfg  ComboboxConfig
	item collection.ItemFunc[string, Node]
}

// NewCombobox validates cfg and fn. A zero fn renders each match as a
// listbox option.
func NewCombobox(cfg ComboboxConfig, fn collection.RenderFunc[string, Node]) (*Combobox, error) {
	if err := cfg.Attrs.check("combobox"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("ui: combobox name is required")
	}
	if fn.Arity() == 0 {
		fn = collection.WithItemAndIndex(func(item string, index int) Node {
			return ComboboxOption(cfg.ID, item, index, item == cfg.Value)
		})
	}
	item, err := collection.RenderFunction(fn)
	if err != nil {
		return nil, fmt.Errorf("ui: combobox: %w", err)
	}
	return &Combobox{cfg: cfg, item: item}, nil
}

// Matches returns the items containing query, ignoring case. An empty query
// matches everything.
func (c *Combobox) Matches(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, len(c.cfg.Items))
	for _, item := range c.cfg.Items {
		if query == "" || strings.Contains(strings.ToLower(item), query) {
			out = append(out, item)
		}
	}
	return out
}

// Filter renders the options that match query. index is the position among
// the matches.
func (c *Combobox) Filter(query string) ([]Node, error) {
	matches := c.Matches(query)
	nodes := make([]Node, 0, len(matches))
	for i, item := range matches {
		node, err := c.item(item, i)
		if err != nil {
			return nil, fmt.Errorf("ui: combobox option: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Node renders the input, the listbox filtered by the current value and an
// empty-state message.
func (c *Combobox) Node(query string) (Node, error) {
	cfg := c.cfg
	listID := cfg.ID + "-listbox"
	input, err := Input(InputConfig{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Value:       cfg.Value,
		Placeholder: cfg.Placeholder,
		Invalid:     cfg.Invalid,
		Class:       Cn("lf-combobox-input", cfg.Class),
		Attrs: mergeAttrs(cfg.Attrs, Attrs{
			"aria-autocomplete": "list",
			"aria-controls":     listID,
			"data-lf-combobox":  "true",
			"data-lf-endpoint":  cfg.Endpoint,
		}),
	})
	if err != nil {
		return nil, err
	}
	options, err := c.Filter(query)
	if err != nil {
		return nil, err
	}
	list := El("ul", []Attr{A("id", listID), A("role", "listbox"), A("class", "lf-combobox-list")}, options...)
	if len(options) == 0 {
		list.Append(ComboboxEmpty())
	}
	return El("div", []Attr{A("class", "lf-combobox"), A("role", "combobox")}, input, list), nil
}

// ComboboxEmpty is the entry shown when no item matches.
func ComboboxEmpty() Node {
	return El("li", []Attr{A("class", "lf-combobox-empty")}, Text("No results found"))
}

// ComboboxOption is the default listbox entry.
func ComboboxOption(ownerID, item string, index int, selected bool) Node {
	return El("li", []Attr{
		A("id", fmt.Sprintf("%s-option-%d", ownerID, index)),
		A("role", "option"),
		A("class", "lf-combobox-option"),
		A("data-value", item),
		A("aria-selected", ariaBool(selected)),
	}, Text(item))
}

func mergeAttrs(base, extra Attrs) Attrs {
	out := make(Attrs, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
