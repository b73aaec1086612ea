package components

import (
	"github.com/goliatone/go-leadform/pkg/collection"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/ui"
)

// ComboboxScript is the asset path of the client-side combobox behaviour,
// relative to the renderer's asset prefix.
const ComboboxScript = "leadform-combobox.js"

// NewDefaultRegistry constructs a registry pre-populated with a control for
// every field kind a lead form definition can declare.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameText, Descriptor{Renderer: inputRenderer("text")})
	registry.MustRegister(NameEmail, Descriptor{Renderer: inputRenderer("email")})
	registry.MustRegister(NameTextarea, Descriptor{Renderer: textareaRenderer})
	registry.MustRegister(NameSelect, Descriptor{Renderer: selectRenderer})
	registry.MustRegister(NameCombobox, Descriptor{
		Renderer: comboboxRenderer,
		Scripts:  []Script{{Src: ComboboxScript, Defer: true}},
	})

	return registry
}

func describedBy(data ComponentData) ui.Attrs {
	if !data.Invalid || data.ErrorID == "" {
		return nil
	}
	return ui.Attrs{"aria-describedby": data.ErrorID}
}

func inputRenderer(inputType string) Renderer {
	return func(field model.FieldDefinition, data ComponentData) (ui.Node, error) {
		return ui.Input(ui.InputConfig{
			ID:          data.ID,
			Name:        field.Name,
			Type:        inputType,
			Value:       data.Value,
			Placeholder: field.Placeholder,
			Required:    field.Required,
			MaxLength:   field.MaxLength,
			Invalid:     data.Invalid,
			Attrs:       describedBy(data),
		})
	}
}

func textareaRenderer(field model.FieldDefinition, data ComponentData) (ui.Node, error) {
	return ui.Textarea(ui.TextareaConfig{
		ID:          data.ID,
		Name:        field.Name,
		Value:       data.Value,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		MaxLength:   field.MaxLength,
		Invalid:     data.Invalid,
		Attrs:       describedBy(data),
	})
}

func selectRenderer(field model.FieldDefinition, data ComponentData) (ui.Node, error) {
	return ui.Select(ui.SelectConfig{
		ID:          data.ID,
		Name:        field.Name,
		Options:     field.Options,
		Value:       data.Value,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Invalid:     data.Invalid,
		Attrs:       describedBy(data),
	})
}

func comboboxRenderer(field model.FieldDefinition, data ComponentData) (ui.Node, error) {
	placeholder := field.Placeholder
	if placeholder == "" {
		placeholder = ui.DefaultPlaceholder
	}
	combobox, err := ui.NewCombobox(ui.ComboboxConfig{
		ID:          data.ID,
		Name:        field.Name,
		Items:       field.Options,
		Value:       data.Value,
		Placeholder: placeholder,
		Invalid:     data.Invalid,
		Endpoint:    data.Endpoint,
		Attrs:       describedBy(data),
	}, collection.RenderFunc[string, ui.Node]{})
	if err != nil {
		return nil, err
	}
	// Every option is listed server-side; the script filters as the user types.
	return combobox.Node("")
}
