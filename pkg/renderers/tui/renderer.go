package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

// Renderer implements render.Renderer for terminals: a plain-text summary of
// the current screen, or the view as JSON.
type Renderer struct {
	format OutputFormat
	theme  Theme
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer constructs a text renderer. An empty format selects pretty text.
func NewRenderer(format OutputFormat) *Renderer {
	if format == "" {
		format = OutputFormatPrettyText
	}
	return &Renderer{format: format, theme: DefaultTheme()}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	if r.format == OutputFormatJSON {
		return "tui-json"
	}
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.format == OutputFormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Render describes view. Translations from opts apply to the copy.
func (r *Renderer) Render(ctx context.Context, view workflow.View, opts render.RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if r.format == OutputFormatJSON {
		return render.JSONRenderer{}.Render(ctx, view, opts)
	}
	render.LocalizeView(&view, opts)
	errs := render.ViewErrors(view, opts.Errors)

	var b strings.Builder
	if view.Phase != workflow.PhaseStep {
		writeCompletion(&b, view.Completion)
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "%s\n", view.FormTitle)
	fmt.Fprintf(&b, "Step %d of %d: %s\n", view.Step.ID, view.StepCount, view.Step.Title)
	for _, message := range errs.Form {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, message)
	}
	for _, field := range view.Step.Fields {
		marker := ""
		if field.Required {
			marker = "*"
		}
		fmt.Fprintf(&b, "  %s%s: %s\n", field.Label, marker, view.Values[field.Name])
		for _, message := range errs.For(field.Name) {
			fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, message)
		}
	}
	return []byte(b.String()), nil
}

func writeCompletion(b *strings.Builder, completion *workflow.Completion) {
	if completion == nil {
		return
	}
	if completion.Title != "" {
		fmt.Fprintf(b, "%s\n", completion.Title)
	}
	if completion.Message != "" {
		fmt.Fprintf(b, "%s\n", completion.Message)
	}
	if completion.Action != "" {
		fmt.Fprintf(b, "-> %s\n", completion.Action)
	}
	if booking := completion.Booking; booking != nil && booking.URL != "" {
		fmt.Fprintf(b, "Book a time: %s\n", booking.URL)
	}
}
