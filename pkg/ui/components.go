package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-leadform/pkg/collection"
)

// Base classes shared by the built-in components.
const (
	ClassInput    = "lf-input"
	ClassTextarea = "lf-input lf-textarea"
	ClassSelect   = "lf-input lf-select"
	ClassButton   = "lf-button"
	ClassInvalid  = "lf-invalid"
	ClassLabel    = "lf-label"
	ClassError    = "lf-error"
	ClassField    = "lf-field"
)

// DefaultPlaceholder is the first option of a select before a choice is made.
const DefaultPlaceholder = "Select"

// InputConfig configures a single-line input.
type InputConfig struct {
	ID          string
	Name        string
	Type        string
	Value       string
	Placeholder string
	Required    bool
	MaxLength   int
	Invalid     bool
	Disabled    bool
	Class       string
	Attrs       Attrs
}

// Input renders an <input>. Type defaults to text.
func Input(cfg InputConfig) (Node, error) {
	if err := cfg.Attrs.check("input"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("ui: input name is required")
	}
	typ := cfg.Type
	if typ == "" {
		typ = "text"
	}
	attrs := []Attr{
		A("type", typ),
		A("id", cfg.ID),
		A("name", cfg.Name),
		A("value", cfg.Value),
		A("placeholder", cfg.Placeholder),
		A("class", Cn(ClassInput, invalidClass(cfg.Invalid), cfg.Class)),
	}
	if cfg.MaxLength > 0 {
		attrs = append(attrs, A("maxlength", strconv.Itoa(cfg.MaxLength)))
	}
	attrs = append(attrs,
		Flag("required", cfg.Required),
		Flag("disabled", cfg.Disabled),
		A("aria-invalid", ariaBool(cfg.Invalid)),
	)
	attrs = append(attrs, sortedAttrs(cfg.Attrs)...)
	return El("input", attrs), nil
}

// TextareaConfig configures a multi-line input.
type TextareaConfig struct {
	ID          string
	Name        string
	Value       string
	Placeholder string
	Rows        int
	Required    bool
	MaxLength   int
	Invalid     bool
	Class       string
	Attrs       Attrs
}

// Textarea renders a <textarea>. Rows defaults to 4.
func Textarea(cfg TextareaConfig) (Node, error) {
	if err := cfg.Attrs.check("textarea"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("ui: textarea name is required")
	}
	rows := cfg.Rows
	if rows <= 0 {
		rows = 4
	}
	attrs := []Attr{
		A("id", cfg.ID),
		A("name", cfg.Name),
		A("rows", strconv.Itoa(rows)),
		A("placeholder", cfg.Placeholder),
		A("class", Cn(ClassTextarea, invalidClass(cfg.Invalid), cfg.Class)),
	}
	if cfg.MaxLength > 0 {
		attrs = append(attrs, A("maxlength", strconv.Itoa(cfg.MaxLength)))
	}
	attrs = append(attrs,
		Flag("required", cfg.Required),
		A("aria-invalid", ariaBool(cfg.Invalid)),
	)
	attrs = append(attrs, sortedAttrs(cfg.Attrs)...)
	return El("textarea", attrs, Text(cfg.Value)), nil
}

// SelectConfig configures a native select. The placeholder option is always
// first and is selected until Value names one of Options.
type SelectConfig struct {
	ID          string
	Name        string
	Options     []string
	Value       string
	Placeholder string
	Required    bool
	Invalid     bool
	Class       string
	Attrs       Attrs
}

// Select renders a <select> whose options are produced by
// collection.RenderList.
func Select(cfg SelectConfig) (Node, error) {
	if err := cfg.Attrs.check("select"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("ui: select name is required")
	}
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	selected := ""
	for _, option := range cfg.Options {
		if option == cfg.Value {
			selected = option
			break
		}
	}

	options, err := collection.RenderList(cfg.Options, collection.WithItem(func(option string) Node {
		return El("option", []Attr{A("value", option), Flag("selected", option == selected)}, Text(option))
	}))
	if err != nil {
		return nil, fmt.Errorf("ui: select options: %w", err)
	}

	attrs := []Attr{
		A("id", cfg.ID),
		A("name", cfg.Name),
		A("class", Cn(ClassSelect, invalidClass(cfg.Invalid), cfg.Class)),
		Flag("required", cfg.Required),
		A("aria-invalid", ariaBool(cfg.Invalid)),
	}
	attrs = append(attrs, sortedAttrs(cfg.Attrs)...)

	children := make([]Node, 0, len(options)+1)
	children = append(children, El("option", []Attr{
		A("value", placeholder),
		Flag("selected", selected == ""),
		Flag("disabled", cfg.Required),
	}, Text(placeholder)))
	children = append(children, options...)
	return El("select", attrs, children...), nil
}

// ButtonVariant selects the button styling.
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonGhost     ButtonVariant = "ghost"
)

// ButtonConfig configures a <button>.
type ButtonConfig struct {
	Type       string
	Label      string
	Variant    ButtonVariant
	Name       string
	Value      string
	Disabled   bool
	Loading    bool
	Icon       string
	FormAction string
	Class      string
	Attrs      Attrs
}

// Button renders a <button>. A loading button is disabled and marked busy.
func Button(cfg ButtonConfig) (Node, error) {
	if err := cfg.Attrs.check("button"); err != nil {
		return nil, err
	}
	variant := cfg.Variant
	switch variant {
	case "":
		variant = ButtonPrimary
	case ButtonPrimary, ButtonSecondary, ButtonGhost:
	default:
		return nil, fmt.Errorf("%w: button variant %q", ErrUnknownProp, variant)
	}
	typ := cfg.Type
	if typ == "" {
		typ = "submit"
	}
	attrs := []Attr{
		A("type", typ),
		A("name", cfg.Name),
		A("class", Cn(ClassButton, "lf-button-"+string(variant), cfg.Class)),
		A("formaction", cfg.FormAction),
	}
	if cfg.Value != "" {
		attrs = append(attrs, A("value", cfg.Value))
	}
	attrs = append(attrs,
		Flag("disabled", cfg.Disabled || cfg.Loading),
		A("aria-busy", ariaBool(cfg.Loading)),
	)
	attrs = append(attrs, sortedAttrs(cfg.Attrs)...)

	button := El("button", attrs)
	if cfg.Loading {
		spinner, err := Icon("spinner", "lf-spin")
		if err != nil {
			return nil, err
		}
		button.Append(spinner)
	} else if cfg.Icon != "" {
		icon, err := Icon(cfg.Icon, "")
		if err != nil {
			return nil, err
		}
		button.Append(icon)
	}
	button.Append(El("span", nil, Text(cfg.Label)))
	return button, nil
}

// Label renders a <label> for the control with id forID.
func Label(forID, text string, required bool) Node {
	label := El("label", []Attr{A("for", forID), A("class", ClassLabel)}, Text(text))
	if required {
		label.Append(El("span", []Attr{A("class", "lf-required"), A("aria-hidden", "true")}, Text("*")))
	}
	return label
}

// FieldConfig wraps a control with its label and error message.
type FieldConfig struct {
	ID       string
	Label    string
	Required bool
	Message  string
	Control  Node
}

// Field renders the label, control and any error message for one input.
func Field(cfg FieldConfig) Node {
	wrapper := El("div", []Attr{A("class", Cn(ClassField, invalidClass(cfg.Message != "")))})
	if cfg.Label != "" {
		wrapper.Append(Label(cfg.ID, cfg.Label, cfg.Required))
	}
	wrapper.Append(cfg.Control)
	if cfg.Message != "" {
		wrapper.Append(ErrorMessage(cfg.ID+"-error", cfg.Message))
	}
	return wrapper
}

// ErrorMessage renders an alert paragraph.
func ErrorMessage(id, message string) Node {
	return El("p", []Attr{A("id", id), A("class", ClassError), A("role", "alert")}, Text(message))
}

func invalidClass(invalid bool) string {
	if invalid {
		return ClassInvalid
	}
	return ""
}

func ariaBool(v bool) string {
	if v {
		return "true"
	}
	return ""
}
