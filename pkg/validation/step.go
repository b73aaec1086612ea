package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-leadform/pkg/model"
)

// CleanStepValues keeps only the fields declared by step, trims whitespace,
// and maps the select placeholder to an empty value.
func CleanStepValues(step model.StepDefinition, values map[string]string) map[string]string {
	out := make(map[string]string, len(step.Fields))
	for _, field := range step.Fields {
		value := strings.TrimSpace(values[field.Name])
		if field.Kind.HasOptions() && IsPlaceholder(value) {
			value = ""
		}
		out[field.Name] = value
	}
	return out
}

// IsPlaceholder reports whether a select still shows its default option.
func IsPlaceholder(value string) bool {
	return strings.TrimSpace(value) == model.DefaultPlaceholderOption
}

// ValidateStep cleans the submitted values and checks them against step. It
// returns the cleaned values and the first issue found, in field order, with
// field-level checks running before the step's named validators. An error is
// returned only when the step references a validator that rules cannot
// resolve.
func ValidateStep(step model.StepDefinition, values map[string]string, rules *Rules) (map[string]string, *Issue, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	cleaned := CleanStepValues(step, values)

	for _, field := range step.Fields {
		if issue := checkField(field, cleaned[field.Name]); issue != nil {
			return cleaned, issue, nil
		}
	}

	for _, name := range step.Validators {
		validator, ok := rules.Validator(name)
		if !ok {
			return cleaned, nil, fmt.Errorf("validation: step %d references unknown validator %q", step.ID, name)
		}
		if issue := validator(cleaned); issue != nil {
			return cleaned, issue, nil
		}
	}
	return cleaned, nil, nil
}

func checkField(field model.FieldDefinition, value string) *Issue {
	if value == "" {
		if field.Required {
			return &Issue{Field: field.Name, Message: field.MissingMessage()}
		}
		return nil
	}
	if field.Kind.HasOptions() && !field.HasOption(value) {
		return &Issue{Field: field.Name, Message: MessageInvalidOption}
	}
	if field.MaxLength > 0 && utf8.RuneCountInString(value) > field.MaxLength {
		label := strings.TrimSpace(field.Label)
		if label == "" {
			label = field.Name
		}
		return &Issue{
			Field:   field.Name,
			Message: fmt.Sprintf("%s must be at most %d characters", label, field.MaxLength),
		}
	}
	return nil
}

// CheckReferences verifies every validator and predicate named by def is
// registered. Engines call it once at construction.
func CheckReferences(def model.FormDefinition, rules *Rules) error {
	if rules == nil {
		rules = DefaultRules()
	}
	for _, step := range def.Steps {
		for _, name := range step.Validators {
			if _, ok := rules.Validator(name); !ok {
				return fmt.Errorf("validation: step %d references unknown validator %q", step.ID, name)
			}
		}
		if step.Transition.Kind == model.TransitionBranch {
			if err := checkCondition(def, rules, step.Transition.When); err != nil {
				return fmt.Errorf("validation: step %d: %w", step.ID, err)
			}
		}
	}
	return nil
}

// checkCondition accepts a registered predicate name or an expression whose
// fields all exist in the definition.
func checkCondition(def model.FormDefinition, rules *Rules, when string) error {
	if _, ok := rules.Predicate(when); ok {
		return nil
	}
	fields, err := ExpressionFields(when)
	if err != nil {
		return fmt.Errorf("unknown predicate %q: %w", when, err)
	}
	known := make(map[string]bool)
	for _, step := range def.Steps {
		for _, field := range step.Fields {
			known[field.Name] = true
		}
	}
	for _, name := range fields {
		if !known[name] {
			return fmt.Errorf("unknown predicate or field %q in %q", name, when)
		}
	}
	return nil
}
