package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that renderers use without touching
// session state.
type RenderOptions struct {
	// BasePath prefixes every form action, for example "/demo".
	BasePath string
	// Hidden inputs emitted inside every form, such as a CSRF token.
	Hidden map[string]string
	// Errors adds server-side messages keyed by field name. Unknown keys are
	// shown as form-level messages.
	Errors map[string][]string
	// Theme is the resolved theme selection. Renderers fall back to their
	// built-in styling when nil.
	Theme *theme.RendererConfig
	// Locale and Translator localise step, field and outcome copy.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}
