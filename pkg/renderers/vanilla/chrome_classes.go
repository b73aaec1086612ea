package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassBody      ChromeClass = "lf-body"
	ClassContainer ChromeClass = "lf-container"
	ClassForm      ChromeClass = "lf-form"
	ClassHeader    ChromeClass = "lf-header"
	ClassFieldset  ChromeClass = "lf-fieldset"
	ClassActions   ChromeClass = "lf-actions"
	ClassErrors    ChromeClass = "lf-errors"
	ClassOutcome   ChromeClass = "lf-outcome"
)

// ChromeClasses overrides the classes applied to the page chrome. Empty
// entries keep the defaults.
type ChromeClasses struct {
	Body      string
	Container string
	Form      string
	Header    string
	Fieldset  string
	Actions   string
	Errors    string
	Outcome   string
}

// DefaultChromeClasses returns the built-in class names.
func DefaultChromeClasses() ChromeClasses {
	return ChromeClasses{
		Body:      string(ClassBody),
		Container: string(ClassContainer),
		Form:      string(ClassForm),
		Header:    string(ClassHeader),
		Fieldset:  string(ClassFieldset),
		Actions:   string(ClassActions),
		Errors:    string(ClassErrors),
		Outcome:   string(ClassOutcome),
	}
}

func (c ChromeClasses) merge(overrides ChromeClasses) ChromeClasses {
	pick := func(base, override string) string {
		if override = sanitizeClassList(override); override != "" {
			return override
		}
		return base
	}
	return ChromeClasses{
		Body:      pick(c.Body, overrides.Body),
		Container: pick(c.Container, overrides.Container),
		Form:      pick(c.Form, overrides.Form),
		Header:    pick(c.Header, overrides.Header),
		Fieldset:  pick(c.Fieldset, overrides.Fieldset),
		Actions:   pick(c.Actions, overrides.Actions),
		Errors:    pick(c.Errors, overrides.Errors),
		Outcome:   pick(c.Outcome, overrides.Outcome),
	}
}

func (c ChromeClasses) context() map[string]any {
	return map[string]any{
		"body":      c.Body,
		"container": c.Container,
		"form":      c.Form,
		"header":    c.Header,
		"fieldset":  c.Fieldset,
		"actions":   c.Actions,
		"errors":    c.Errors,
		"outcome":   c.Outcome,
	}
}
