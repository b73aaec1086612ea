package model

import "strings"

// StepID identifies a step by its 1-based position in the form.
type StepID int

// TerminalState marks a session that left the normal step sequence.
type TerminalState string

const (
	TerminalNone          TerminalState = ""
	TerminalSelfServe     TerminalState = "routed-to-self-serve"
	TerminalSalesCalendar TerminalState = "routed-to-sales-calendar"
)

// Valid reports whether the state is one of the known terminal states.
func (t TerminalState) Valid() bool {
	switch t {
	case TerminalNone, TerminalSelfServe, TerminalSalesCalendar:
		return true
	default:
		return false
	}
}

// OutcomeKey selects the copy shown once a session reaches a terminal state.
type OutcomeKey string

const (
	OutcomePersonalEmail OutcomeKey = "personal-email"
	OutcomeSmallCompany  OutcomeKey = "small-company"
	OutcomeCalendar      OutcomeKey = "calendar"
	OutcomeThankYou      OutcomeKey = "thank-you"
)

// FieldKind is the input control used to collect a field.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindEmail    FieldKind = "email"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindCombobox FieldKind = "combobox"
)

// HasOptions reports whether the kind draws its value from a fixed option list.
func (k FieldKind) HasOptions() bool {
	return k == FieldKindSelect || k == FieldKindCombobox
}

// DefaultPlaceholderOption is the value a select reports before the user picks
// anything.
const DefaultPlaceholderOption = "Select"

// FieldDefinition describes a single input collected by a step.
type FieldDefinition struct {
	Name            string    `json:"name" yaml:"name"`
	Label           string    `json:"label" yaml:"label"`
	Kind            FieldKind `json:"kind" yaml:"kind"`
	Placeholder     string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required        bool      `json:"required,omitempty" yaml:"required,omitempty"`
	RequiredMessage string    `json:"requiredMessage,omitempty" yaml:"required_message,omitempty"`
	MaxLength       int       `json:"maxLength,omitempty" yaml:"max_length,omitempty"`
	Options         []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// MissingMessage returns the message shown when a required field is empty.
func (f FieldDefinition) MissingMessage() string {
	if msg := strings.TrimSpace(f.RequiredMessage); msg != "" {
		return msg
	}
	label := strings.ToLower(strings.TrimSpace(f.Label))
	if label == "" {
		label = strings.ReplaceAll(f.Name, "_", " ")
	}
	if f.Kind.HasOptions() {
		return "Please select " + label
	}
	return "Please enter your " + label
}

// HasOption reports whether value is one of the declared options.
func (f FieldDefinition) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// TransitionKind selects how a step advances once its input is accepted.
type TransitionKind string

const (
	// TransitionNext moves to the following step.
	TransitionNext TransitionKind = "next"
	// TransitionTerminal ends the sequence in Target.
	TransitionTerminal TransitionKind = "terminal"
	// TransitionBranch ends the sequence in Target when the When predicate
	// holds and moves to the following step otherwise.
	TransitionBranch TransitionKind = "branch"
)

// Transition is the rule evaluated after a step is submitted successfully.
type Transition struct {
	Kind   TransitionKind `json:"kind" yaml:"kind"`
	When   string         `json:"when,omitempty" yaml:"when,omitempty"`
	Target TerminalState  `json:"target,omitempty" yaml:"target,omitempty"`
	// Outcome names the copy shown when the branch or terminal fires.
	Outcome OutcomeKey `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// StepDefinition groups the fields collected together on one screen.
type StepDefinition struct {
	ID         StepID            `json:"id" yaml:"id"`
	Title      string            `json:"title" yaml:"title"`
	Fields     []FieldDefinition `json:"fields" yaml:"fields"`
	Validators []string          `json:"validators,omitempty" yaml:"validators,omitempty"`
	Transition Transition        `json:"transition" yaml:"transition"`
}

// RequiredFields returns the names of the required fields in declaration order.
func (s StepDefinition) RequiredFields() []string {
	var out []string
	for _, field := range s.Fields {
		if field.Required {
			out = append(out, field.Name)
		}
	}
	return out
}

// Field looks up a field declared by this step.
func (s StepDefinition) Field(name string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// Outcome is the copy displayed for a terminal state.
type Outcome struct {
	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`
	Action  string `json:"action,omitempty" yaml:"action,omitempty"`
}

// FormDefinition is the complete, ordered description of a lead form.
type FormDefinition struct {
	ID       string                 `json:"id" yaml:"id"`
	Title    string                 `json:"title" yaml:"title"`
	Steps    []StepDefinition       `json:"steps" yaml:"steps"`
	Outcomes map[OutcomeKey]Outcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Metadata map[string]string      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FirstStep returns the initial step id.
func (d FormDefinition) FirstStep() StepID {
	return 1
}

// LastStep returns the id of the final step.
func (d FormDefinition) LastStep() StepID {
	return StepID(len(d.Steps))
}

// Step returns the definition for id.
func (d FormDefinition) Step(id StepID) (StepDefinition, bool) {
	idx := int(id) - 1
	if idx < 0 || idx >= len(d.Steps) {
		return StepDefinition{}, false
	}
	return d.Steps[idx], true
}

// Field finds a field by name across all steps.
func (d FormDefinition) Field(name string) (FieldDefinition, bool) {
	for _, step := range d.Steps {
		if field, ok := step.Field(name); ok {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// FieldNames lists every field name in step order.
func (d FormDefinition) FieldNames() []string {
	var out []string
	for _, step := range d.Steps {
		for _, field := range step.Fields {
			out = append(out, field.Name)
		}
	}
	return out
}

// Outcome returns the copy registered for key.
func (d FormDefinition) Outcome(key OutcomeKey) Outcome {
	if d.Outcomes == nil {
		return Outcome{}
	}
	return d.Outcomes[key]
}
