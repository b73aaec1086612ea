package workflow

import (
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/validation"
)

// View is everything a renderer needs to draw the current screen.
type View struct {
	FormID    string
	FormTitle string
	SessionID string
	Phase     Phase
	// Step is the current step definition; zero once the session terminated.
	Step      model.StepDefinition
	StepCount int
	// Values prefills inputs: accepted fields overlaid with the values of a
	// rejected submission so users do not retype them.
	Values     map[string]string
	Issue      *validation.Issue
	Completion *Completion
	Snapshot   Snapshot
}

// IsFirstStep reports whether the back action should be hidden.
func (v View) IsFirstStep() bool {
	return v.Step.ID <= 1
}

// IsLastStep reports whether the current step finalizes the form.
func (v View) IsLastStep() bool {
	return int(v.Step.ID) == v.StepCount
}

// View builds the current view. draft, when non-nil, holds raw values from a
// rejected submission and takes precedence over accepted fields.
func (s *Session) View(draft map[string]string) View {
	snap := s.Snapshot()
	def := s.engine.def

	values := make(map[string]string, len(snap.Fields)+len(draft))
	for k, v := range snap.Fields {
		values[k] = v
	}
	for k, v := range draft {
		values[k] = v
	}

	view := View{
		FormID:     def.ID,
		FormTitle:  def.Title,
		SessionID:  snap.ID,
		Phase:      snap.Phase(),
		StepCount:  len(def.Steps),
		Values:     values,
		Completion: snap.Completion,
		Snapshot:   snap,
	}
	if snap.ErrorMessage != "" {
		view.Issue = &validation.Issue{Field: snap.ErrorField, Message: snap.ErrorMessage}
	}
	if !snap.Done() {
		if step, ok := def.Step(snap.CurrentStep); ok {
			view.Step = step.Clone()
		}
	}
	return view
}
