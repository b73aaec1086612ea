package vanilla

import "strings"

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "lf-" + trimmed
}

func errorID(name string) string {
	id := controlID(name)
	if id == "" {
		return ""
	}
	return id + "-error"
}

// sanitizeClassList collapses whitespace and drops the reserved "lf-" prefix
// so overrides cannot collide with component classes.
func sanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "lf-") {
			continue
		}
		keep = append(keep, token)
	}
	return strings.Join(keep, " ")
}

// joinURL joins path segments under base without doubling slashes.
func joinURL(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		if segment == "" {
			continue
		}
		out += "/" + segment
	}
	if out == "" {
		return "/"
	}
	return out
}

// assetURL resolves a relative asset path under prefix. Absolute paths and
// full URLs pass through.
func assetURL(prefix, path string) string {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return path
	}
	return joinURL(prefix, path)
}
