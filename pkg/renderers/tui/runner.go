package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-leadform/pkg/collection"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/ui"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

const (
	choiceContinue = "Continue"
	choiceBack     = "Go back"
)

// Runner walks a session through its steps in a terminal: it prompts for the
// current step's fields, submits them and repeats until the session reaches
// a terminal state.
type Runner struct {
	driver    PromptDriver
	theme     Theme
	text      *Renderer
	allowBack bool
}

// NewRunner constructs a runner with the survey driver unless another driver
// is supplied.
func NewRunner(options ...Option) *Runner {
	r := &Runner{
		theme: DefaultTheme(),
		text:  NewRenderer(OutputFormatPrettyText),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Run drives session to completion and returns its final snapshot. Rejected
// submissions print the error and prompt the step again with the previous
// answers as defaults. Driver errors, including ErrAborted, end the run.
func (r *Runner) Run(ctx context.Context, session *workflow.Session) (workflow.Snapshot, error) {
	if session == nil {
		return workflow.Snapshot{}, ErrNilSession
	}
	if ctx == nil {
		ctx = context.Background()
	}

	state := NewState(session.Snapshot().Fields)
	for {
		if err := ctx.Err(); err != nil {
			return session.Snapshot(), err
		}
		view := session.View(state.Values())
		if view.Phase != workflow.PhaseStep {
			summary, err := r.text.Render(ctx, view, render.RenderOptions{})
			if err != nil {
				return session.Snapshot(), err
			}
			if err := r.info(ctx, strings.TrimRight(string(summary), "\n")); err != nil {
				return session.Snapshot(), err
			}
			return session.Snapshot(), nil
		}

		if err := r.info(ctx, fmt.Sprintf("Step %d of %d: %s", view.Step.ID, view.StepCount, view.Step.Title)); err != nil {
			return session.Snapshot(), err
		}
		if view.Issue != nil {
			if err := r.info(ctx, r.theme.ErrorPrefix+view.Issue.Message); err != nil {
				return session.Snapshot(), err
			}
		}

		names := make([]string, 0, len(view.Step.Fields))
		for _, field := range view.Step.Fields {
			value, err := r.prompt(ctx, field, state.Get(field.Name))
			if err != nil {
				return session.Snapshot(), err
			}
			state.Set(field.Name, value)
			names = append(names, field.Name)
		}

		if r.allowBack && !view.IsFirstStep() {
			choice, err := r.driver.Select(ctx, SelectConfig{
				Message: "Next",
				Options: []string{choiceContinue, choiceBack},
			})
			if err != nil {
				return session.Snapshot(), err
			}
			if choice == 1 {
				session.GoBack()
				continue
			}
		}

		if err := session.SubmitStep(ctx, view.Step.ID, state.Subset(names)); err != nil {
			return session.Snapshot(), fmt.Errorf("tui: submit step %d: %w", view.Step.ID, err)
		}
	}
}

func (r *Runner) prompt(ctx context.Context, field model.FieldDefinition, current string) (string, error) {
	message := r.theme.PromptPrefix + field.Label
	if field.Required {
		message += " *"
	}

	switch field.Kind {
	case model.FieldKindTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    field.Placeholder,
		})

	case model.FieldKindSelect:
		options := field.Options
		if !field.Required {
			options = append([]string{model.DefaultPlaceholderOption}, options...)
		}
		defaultIndex := indexOf(options, current)
		if defaultIndex < 0 {
			defaultIndex = 0
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: defaultIndex,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) {
			return "", nil
		}
		return options[idx], nil

	case model.FieldKindCombobox:
		combobox, err := ui.NewCombobox(ui.ComboboxConfig{
			ID:    field.Name,
			Name:  field.Name,
			Items: field.Options,
		}, collection.RenderFunc[string, ui.Node]{})
		if err != nil {
			return "", fmt.Errorf("tui: %w", err)
		}
		return r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: current,
			Help:    strings.Join(field.Options, ", "),
			Suggest: combobox.Matches,
		})

	default:
		return r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: current,
			Help:    field.Placeholder,
		})
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}
