package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when localisation
// was requested without a Translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate implements Translator.
func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. params carries a {"default": fallback} map when one exists.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

func missingTranslationDefault(_ string, key string, params []any, _ error) string {
	for _, param := range params {
		if values, ok := param.(map[string]any); ok {
			if fallback := strings.TrimSpace(anyToString(values["default"])); fallback != "" {
				return fallback
			}
		}
	}
	return key
}

// Message keys looked up by LocalizeView. Keys not found in the translator
// keep the copy from the form definition.
func formTitleKey(formID string) string { return "leadform." + formID + ".title" }

func stepTitleKey(formID string, step model.StepID) string {
	return fmt.Sprintf("leadform.%s.steps.%d.title", formID, step)
}

func fieldKey(formID, field, attr string) string {
	return "leadform." + formID + ".fields." + field + "." + attr
}

func outcomeKey(formID string, outcome model.OutcomeKey, attr string) string {
	return "leadform." + formID + ".outcomes." + string(outcome) + "." + attr
}

// LocalizeView translates the copy carried by view in place: form and step
// titles, field labels and placeholders, and the completion copy. It is a
// no-op when neither a Translator nor a locale is configured.
func LocalizeView(view *workflow.View, opts RenderOptions) {
	if view == nil || (opts.Translator == nil && strings.TrimSpace(opts.Locale) == "") {
		return
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, opts.Translator, onMissing)
	}

	view.FormTitle = tr(formTitleKey(view.FormID), view.FormTitle)
	if view.Step.ID > 0 {
		view.Step.Title = tr(stepTitleKey(view.FormID, view.Step.ID), view.Step.Title)
		for i := range view.Step.Fields {
			field := &view.Step.Fields[i]
			field.Label = tr(fieldKey(view.FormID, field.Name, "label"), field.Label)
			if field.Placeholder != "" {
				field.Placeholder = tr(fieldKey(view.FormID, field.Name, "placeholder"), field.Placeholder)
			}
		}
	}
	if view.Completion != nil {
		completion := *view.Completion
		completion.Title = tr(outcomeKey(view.FormID, completion.Outcome, "title"), completion.Title)
		completion.Message = tr(outcomeKey(view.FormID, completion.Outcome, "message"), completion.Message)
		if completion.Action != "" {
			completion.Action = tr(outcomeKey(view.FormID, completion.Outcome, "action"), completion.Action)
		}
		view.Completion = &completion
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func anyToString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func sortedKeys(values map[string][]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
