package tui

// OutputFormat controls how Renderer serialises a view.
type OutputFormat string

const (
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
	// OutputFormatJSON emits the view as application/json.
	OutputFormatJSON OutputFormat = "json"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme is applied when no theme is configured.
func DefaultTheme() Theme {
	return Theme{
		InfoPrefix:  "",
		ErrorPrefix: "! ",
	}
}

// Option configures the runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
		r.text.theme = theme
	}
}

// WithBackNavigation asks after every step past the first whether to continue
// or return to the previous step.
func WithBackNavigation(enabled bool) Option {
	return func(r *Runner) {
		r.allowBack = enabled
	}
}
