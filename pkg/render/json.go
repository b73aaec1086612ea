package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

// ViewPayload is the JSON shape of a view.
type ViewPayload struct {
	SessionID  string               `json:"session_id"`
	Phase      workflow.Phase       `json:"phase"`
	Step       int                  `json:"step,omitempty"`
	StepCount  int                  `json:"step_count"`
	Title      string               `json:"title,omitempty"`
	StepTitle  string               `json:"step_title,omitempty"`
	Fields     []FieldPayload       `json:"fields,omitempty"`
	Errors     map[string][]string  `json:"errors,omitempty"`
	FormErrors []string             `json:"form_errors,omitempty"`
	Terminal   model.TerminalState  `json:"terminal,omitempty"`
	Submitting bool                 `json:"submitting,omitempty"`
	Completion *workflow.Completion `json:"completion,omitempty"`
}

// FieldPayload describes one input of the current step with its prefill.
type FieldPayload struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Kind        model.FieldKind `json:"kind"`
	Required    bool            `json:"required,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Value       string          `json:"value"`
}

// NewViewPayload converts view, applying localisation and error mapping from
// opts.
func NewViewPayload(view workflow.View, opts RenderOptions) ViewPayload {
	LocalizeView(&view, opts)
	errs := ViewErrors(view, opts.Errors)
	payload := ViewPayload{
		SessionID:  view.SessionID,
		Phase:      view.Phase,
		StepCount:  view.StepCount,
		Title:      view.FormTitle,
		Errors:     errs.Fields,
		FormErrors: errs.Form,
		Terminal:   view.Snapshot.Terminal,
		Submitting: view.Snapshot.IsSubmitting,
		Completion: view.Completion,
	}
	if view.Phase != workflow.PhaseStep {
		return payload
	}
	payload.Step = int(view.Step.ID)
	payload.StepTitle = view.Step.Title
	for _, field := range view.Step.Fields {
		payload.Fields = append(payload.Fields, FieldPayload{
			Name:        field.Name,
			Label:       field.Label,
			Kind:        field.Kind,
			Required:    field.Required,
			Placeholder: field.Placeholder,
			Options:     field.Options,
			Value:       view.Values[field.Name],
		})
	}
	return payload
}

// JSONRenderer encodes views as ViewPayload documents.
type JSONRenderer struct{}

var _ Renderer = JSONRenderer{}

// Name reports the renderer identifier.
func (JSONRenderer) Name() string { return "json" }

// ContentType reports application/json.
func (JSONRenderer) ContentType() string { return "application/json" }

// Render implements Renderer.
func (JSONRenderer) Render(ctx context.Context, view workflow.View, opts RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	out, err := json.Marshal(NewViewPayload(view, opts))
	if err != nil {
		return nil, fmt.Errorf("render: encode view: %w", err)
	}
	return out, nil
}
