package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// ErrUnknownIcon is returned for names outside the built-in icon set.
var ErrUnknownIcon = errors.New("ui: unknown icon")

const svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="16" height="16" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true" class="%s">`

var iconPaths = map[string]string{
	"arrow-left":   `<path d="M19 12H5"></path><polyline points="12 19 5 12 12 5"></polyline>`,
	"arrow-right":  `<path d="M5 12h14"></path><polyline points="12 5 19 12 12 19"></polyline>`,
	"calendar":     `<rect x="3" y="4" width="18" height="18" rx="2" ry="2"></rect><line x1="16" y1="2" x2="16" y2="6"></line><line x1="8" y1="2" x2="8" y2="6"></line><line x1="3" y1="10" x2="21" y2="10"></line>`,
	"check":        `<polyline points="20 6 9 17 4 12"></polyline>`,
	"chevron-down": `<polyline points="6 9 12 15 18 9"></polyline>`,
	"alert-circle": `<circle cx="12" cy="12" r="10"></circle><line x1="12" y1="8" x2="12" y2="12"></line><line x1="12" y1="16" x2="12.01" y2="16"></line>`,
	"spinner":      `<path d="M21 12a9 9 0 1 1-6.219-8.56"></path>`,
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy

	iconCacheMu sync.RWMutex
	iconCache   = map[string]string{}
)

// IconNames lists the built-in icons.
func IconNames() []string {
	names := make([]string, 0, len(iconPaths))
	for name := range iconPaths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Icon renders a built-in icon as sanitised inline SVG.
func Icon(name, class string) (Node, error) {
	paths, ok := iconPaths[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIcon, name)
	}
	class = Cn("lf-icon", "lf-icon-"+name, class)
	key := name + "|" + class

	iconCacheMu.RLock()
	cached, ok := iconCache[key]
	iconCacheMu.RUnlock()
	if ok {
		return Raw(cached), nil
	}

	markup := SanitizeSVG(fmt.Sprintf(svgOpen, class) + paths + `</svg>`)
	iconCacheMu.Lock()
	iconCache[key] = markup
	iconCacheMu.Unlock()
	return Raw(markup), nil
}

// SanitizeSVG strips anything from raw that is not a plain SVG shape, such as
// scripts, event handlers and foreign elements.
func SanitizeSVG(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(svgSanitizer().Sanitize(trimmed))
}

func svgSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "width", "height", "fill", "stroke",
				"stroke-width", "stroke-linecap", "stroke-linejoin", "class",
			).OnElements(el)
		}
		policy.AllowAttrs("id").OnElements("g")

		iconPolicy = policy
	})
	return iconPolicy
}
