package render

import (
	"fmt"
	"strings"
)

// Message keys for the interface text renderers draw around the form copy.
const (
	ChromeBack         = "leadform.chrome.back"
	ChromeNext         = "leadform.chrome.next"
	ChromeSubmit       = "leadform.chrome.submit"
	ChromeRestart      = "leadform.chrome.restart"
	ChromeProgress     = "leadform.chrome.progress"
	ChromeOpenCalendar = "leadform.chrome.open_calendar"
)

var chromeDefaults = map[string]string{
	ChromeBack:         "Back",
	ChromeNext:         "Next",
	ChromeSubmit:       "Submit",
	ChromeRestart:      "Start over",
	ChromeProgress:     "Step %d of %d",
	ChromeOpenCalendar: "Open the calendar in a new tab",
}

// ChromeDefault returns the English text for a chrome key, or "" for keys
// outside the chrome set.
func ChromeDefault(key string) string {
	return chromeDefaults[key]
}

// Chrome returns a lookup for interface text bound to the locale and
// translator in opts. args are passed to the translator; when the key is
// missing they format the English default instead.
func Chrome(opts RenderOptions) func(key string, args ...any) string {
	locale := strings.TrimSpace(opts.Locale)
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	return func(key string, args ...any) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		fallback := chromeDefaults[key]
		if fallback != "" && len(args) > 0 {
			fallback = fmt.Sprintf(fallback, args...)
		}
		if opts.Translator == nil {
			if fallback != "" {
				return fallback
			}
			return key
		}
		msg, err := opts.Translator.Translate(locale, key, args...)
		if err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
}

// TemplateI18nFuncs returns the per-render template helpers:
//
//	translate(key) string
//	current_locale() string
//
// Templates call them as {{ translate("leadform.chrome.open_calendar") }}.
func TemplateI18nFuncs(opts RenderOptions) map[string]any {
	chrome := Chrome(opts)
	locale := strings.TrimSpace(opts.Locale)
	return map[string]any{
		"translate": func(key string) string {
			return chrome(key)
		},
		"current_locale": func() string {
			return locale
		},
	}
}
