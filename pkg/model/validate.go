package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errDefinitionNoSteps   = errors.New("model: definition requires at least one step")
	errDefinitionOpenEnded = errors.New("model: final step must end in a terminal transition")
)

// Validate checks structural invariants: step ids run 1..N in order, field
// names are unique across the form, option-backed fields declare options, and
// every transition is coherent. The final step must terminate the sequence.
func (d FormDefinition) Validate() error {
	if len(d.Steps) == 0 {
		return errDefinitionNoSteps
	}

	seen := make(map[string]StepID)
	for idx, step := range d.Steps {
		want := StepID(idx + 1)
		if step.ID != want {
			return fmt.Errorf("model: step at position %d has id %d, want %d", idx+1, step.ID, want)
		}
		if len(step.Fields) == 0 {
			return fmt.Errorf("model: step %d declares no fields", step.ID)
		}
		for _, field := range step.Fields {
			if field.Name == "" {
				return fmt.Errorf("model: step %d declares a field without a name", step.ID)
			}
			if prev, dup := seen[field.Name]; dup {
				return fmt.Errorf("model: field %q declared by step %d and step %d", field.Name, prev, step.ID)
			}
			seen[field.Name] = step.ID
			if err := validateField(field); err != nil {
				return fmt.Errorf("model: step %d: %w", step.ID, err)
			}
		}
		if err := validateTransition(step.Transition); err != nil {
			return fmt.Errorf("model: step %d: %w", step.ID, err)
		}
	}

	last := d.Steps[len(d.Steps)-1]
	if last.Transition.Kind != TransitionTerminal {
		return errDefinitionOpenEnded
	}
	return nil
}

func validateField(field FieldDefinition) error {
	switch field.Kind {
	case FieldKindText, FieldKindEmail, FieldKindTextarea:
		if len(field.Options) > 0 {
			return fmt.Errorf("field %q of kind %s cannot declare options", field.Name, field.Kind)
		}
	case FieldKindSelect, FieldKindCombobox:
		if len(field.Options) == 0 {
			return fmt.Errorf("field %q of kind %s requires options", field.Name, field.Kind)
		}
		for _, option := range field.Options {
			if strings.TrimSpace(option) == "" {
				return fmt.Errorf("field %q declares an empty option", field.Name)
			}
			if option == DefaultPlaceholderOption {
				return fmt.Errorf("field %q cannot use the placeholder %q as an option", field.Name, DefaultPlaceholderOption)
			}
		}
	default:
		return fmt.Errorf("field %q has unknown kind %q", field.Name, field.Kind)
	}
	if field.MaxLength < 0 {
		return fmt.Errorf("field %q has negative max length", field.Name)
	}
	if !field.Required && strings.TrimSpace(field.RequiredMessage) != "" {
		return fmt.Errorf("field %q sets required_message but is not required", field.Name)
	}
	return nil
}

func validateTransition(t Transition) error {
	switch t.Kind {
	case TransitionNext:
		if t.Target != TerminalNone || t.When != "" {
			return errors.New("next transition cannot declare a target or predicate")
		}
	case TransitionTerminal:
		if t.Target == TerminalNone || !t.Target.Valid() {
			return fmt.Errorf("terminal transition has invalid target %q", t.Target)
		}
	case TransitionBranch:
		if strings.TrimSpace(t.When) == "" {
			return errors.New("branch transition requires a predicate")
		}
		if t.Target == TerminalNone || !t.Target.Valid() {
			return fmt.Errorf("branch transition has invalid target %q", t.Target)
		}
	default:
		return fmt.Errorf("unknown transition kind %q", t.Kind)
	}
	return nil
}
