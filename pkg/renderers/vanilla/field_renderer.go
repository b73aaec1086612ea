package vanilla

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-leadform/pkg/ui"
)

type componentRenderer struct {
	registry *components.Registry
	basePath string

	usedComponents []string
	seen           map[string]struct{}
}

func newComponentRenderer(registry *components.Registry, basePath string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		registry: registry,
		basePath: basePath,
		seen:     make(map[string]struct{}),
	}
}

// renderStep renders every field of step in declaration order.
func (r *componentRenderer) renderStep(step model.StepDefinition, values map[string]string, errs render.ErrorMapping) (string, error) {
	nodes := make([]ui.Node, 0, len(step.Fields))
	for _, field := range step.Fields {
		node, err := r.render(field, values[field.Name], errs.For(field.Name))
		if err != nil {
			return "", err
		}
		nodes = append(nodes, node)
	}
	return ui.ToHTML(nodes...), nil
}

func (r *componentRenderer) render(field model.FieldDefinition, value string, messages []string) (ui.Node, error) {
	name := string(field.Kind)
	if name == "" {
		name = components.NameText
	}
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return nil, fmt.Errorf("component %q not registered for field %q", name, field.Name)
	}

	data := components.ComponentData{
		ID:      controlID(field.Name),
		Value:   value,
		Invalid: len(messages) > 0,
		ErrorID: errorID(field.Name),
	}
	if field.Kind == model.FieldKindCombobox {
		data.Endpoint = joinURL(r.basePath, "options", field.Name)
	}

	control, err := descriptor.Renderer(field, data)
	if err != nil {
		return nil, fmt.Errorf("render component %q for field %q: %w", name, field.Name, err)
	}
	r.use(name)

	return ui.Field(ui.FieldConfig{
		ID:       data.ID,
		Label:    field.Label,
		Required: field.Required,
		Message:  strings.Join(messages, " "),
		Control:  control,
	}), nil
}

func (r *componentRenderer) use(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.usedComponents = append(r.usedComponents, name)
}
