package ui

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProp is returned when a component receives an attribute it does
// not support.
var ErrUnknownProp = errors.New("ui: unknown prop")

// Attrs carries extra data-* and aria-* attributes for a component.
type Attrs map[string]string

func (a Attrs) check(component string) error {
	for key := range a {
		if !allowedExtraAttr(key) {
			return fmt.Errorf("%w: %s does not accept %q", ErrUnknownProp, component, key)
		}
	}
	return nil
}

func allowedExtraAttr(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, prefix := range []string{"data-", "aria-"} {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) && validAttrName(key) {
			return true
		}
	}
	return false
}

func validAttrName(key string) bool {
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}

// Cn merges class lists, dropping empty entries and duplicates while keeping
// first-seen order.
func Cn(classes ...string) string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(classes))
	for _, list := range classes {
		for _, token := range strings.Fields(list) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			out = append(out, token)
		}
	}
	return strings.Join(out, " ")
}
