package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-leadform/pkg/collection"
	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/render"
	rendertemplate "github.com/goliatone/go-leadform/pkg/render/template"
	gotemplate "github.com/goliatone/go-leadform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/themes"
	"github.com/goliatone/go-leadform/pkg/ui"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

// Partial keys a theme manifest can override to swap templates.
const (
	PartialLayout    = "leadform.layout"
	PartialStep      = "leadform.step"
	PartialSelfServe = "leadform.self_serve"
	PartialCompleted = "leadform.completed"
)

// DefaultPartials maps partial keys onto the embedded templates.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialLayout:    "templates/layout.tmpl",
		PartialStep:      "templates/step.tmpl",
		PartialSelfServe: "templates/self_serve.tmpl",
		PartialCompleted: "templates/completed.tmpl",
	}
}

// DefaultSelfServeURL is the call to action shown on self-serve screens.
const DefaultSelfServeURL = "/start"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	templateFuncs    map[string]any
	registry         *components.Registry
	classes          ChromeClasses
	selfServeURL     string
	assetPrefix      string
	fragment         bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFuncs registers extra helpers shared by every render. The
// per-render translate and current_locale helpers take precedence.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFuncs == nil {
			cfg.templateFuncs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFuncs[name] = fn
		}
	}
}

// WithComponentRegistry replaces the field control registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithChromeClasses overrides chrome class names.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = cfg.classes.merge(classes)
	}
}

// WithSelfServeURL sets the link behind the self-serve call to action.
func WithSelfServeURL(url string) Option {
	return func(cfg *config) {
		if url = strings.TrimSpace(url); url != "" {
			cfg.selfServeURL = url
		}
	}
}

// WithAssetPrefix sets where the embedded assets are served when no theme
// supplies asset URLs.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			cfg.assetPrefix = prefix
		}
	}
}

// WithFragment renders only the form markup, without the document layout,
// so hosts can embed it in their own pages.
func WithFragment() Option {
	return func(cfg *config) {
		cfg.fragment = true
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	classes      ChromeClasses
	selfServeURL string
	assetPrefix  string
	fragment     bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		classes:      DefaultChromeClasses(),
		selfServeURL: DefaultSelfServeURL,
		assetPrefix:  DefaultAssetPrefix,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(cfg.templateFuncs),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		registry:     cfg.registry,
		classes:      cfg.classes,
		selfServeURL: cfg.selfServeURL,
		assetPrefix:  cfg.assetPrefix,
		fragment:     cfg.fragment,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the screen for the view's phase: the current step's form, a
// self-serve screen or the completion screen.
func (r *Renderer) Render(ctx context.Context, view workflow.View, opts render.RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	render.LocalizeView(&view, opts)
	partials := DefaultPartials()
	if opts.Theme != nil {
		for key, value := range opts.Theme.Partials {
			if _, ok := partials[key]; ok && strings.TrimSpace(value) != "" {
				partials[key] = value
			}
		}
	}

	page := r.pageData(view, opts)
	var (
		partial string
		err     error
	)
	switch view.Phase {
	case workflow.PhaseStep:
		partial = PartialStep
		err = r.stepData(page, view, opts)
	case workflow.PhaseSelfServe:
		partial = PartialSelfServe
		r.outcomeData(page, view, opts)
	case workflow.PhaseCompleted:
		partial = PartialCompleted
		r.outcomeData(page, view, opts)
		err = r.bookingData(page, view)
	default:
		err = fmt.Errorf("unknown phase %q", view.Phase)
	}
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	content, err := r.templates.RenderTemplate(partials[partial], page)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	if r.fragment {
		return []byte(content), nil
	}

	page["content"] = content
	result, err := r.templates.RenderTemplate(partials[PartialLayout], page)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(result), nil
}

// ComboboxOptions renders the listbox entries of a combobox field that match
// query. Hosts serve it to the combobox script as an HTML fragment.
func (r *Renderer) ComboboxOptions(field model.FieldDefinition, value, query string) ([]byte, error) {
	if field.Kind != model.FieldKindCombobox {
		return nil, fmt.Errorf("vanilla renderer: field %q is not a combobox", field.Name)
	}
	combobox, err := ui.NewCombobox(ui.ComboboxConfig{
		ID:    controlID(field.Name),
		Name:  field.Name,
		Items: field.Options,
		Value: value,
	}, collection.RenderFunc[string, ui.Node]{})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	nodes, err := combobox.Filter(query)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	if len(nodes) == 0 {
		return []byte(ui.ToHTML(ui.ComboboxEmpty())), nil
	}
	return []byte(ui.ToHTML(nodes...)), nil
}

func (r *Renderer) pageData(view workflow.View, opts render.RenderOptions) map[string]any {
	stylesheet := ""
	cssVars := ""
	themeName, variant := themes.DefaultTheme, themes.VariantLight
	if cfg := opts.Theme; cfg != nil {
		if cfg.AssetURL != nil {
			stylesheet = cfg.AssetURL(themes.StylesheetKey)
		}
		cssVars = themes.CSSVarsStyle(cfg.CSSVars)
		themeName, variant = cfg.Theme, cfg.Variant
	}
	if stylesheet == "" {
		stylesheet = assetURL(r.assetPrefix, StylesheetName)
	}

	locale := strings.TrimSpace(opts.Locale)
	if locale == "" {
		locale = "en"
	}

	title := view.FormTitle
	if view.Phase == workflow.PhaseStep && view.Step.Title != "" {
		title = view.Step.Title + " | " + view.FormTitle
	}

	page := map[string]any{
		"locale":        locale,
		"title":         title,
		"form_id":       view.FormID,
		"form_title":    view.FormTitle,
		"phase":         string(view.Phase),
		"classes":       r.classes.context(),
		"stylesheet":    stylesheet,
		"css_vars":      cssVars,
		"theme_name":    themeName,
		"theme_variant": variant,
		"hidden":        hiddenContext(opts.Hidden),
		"reset_action":  joinURL(opts.BasePath, "reset"),
		"scripts":       []map[string]any{},
	}
	for name, fn := range render.TemplateI18nFuncs(opts) {
		page[name] = fn
	}
	return page
}

func (r *Renderer) stepData(page map[string]any, view workflow.View, opts render.RenderOptions) error {
	errs := render.ViewErrors(view, opts.Errors)
	fields := newComponentRenderer(r.registry, opts.BasePath)
	fieldsHTML, err := fields.renderStep(view.Step, view.Values, errs)
	if err != nil {
		return err
	}
	chrome := render.Chrome(opts)
	actions, err := stepActions(view, opts.BasePath, chrome)
	if err != nil {
		return err
	}

	_, scripts := r.registry.Assets(fields.usedComponents)
	page["scripts"] = r.scriptContext(scripts)
	page["hidden"] = hiddenContext(render.MergeHiddenFields(opts.Hidden, render.StepField(int(view.Step.ID))))
	page["step"] = map[string]any{
		"id":    int(view.Step.ID),
		"title": view.Step.Title,
	}
	page["step_count"] = view.StepCount
	page["progress"] = chrome(render.ChromeProgress, int(view.Step.ID), view.StepCount)
	page["action"] = joinURL(opts.BasePath, "steps", strconv.Itoa(int(view.Step.ID)))
	page["fields"] = fieldsHTML
	page["actions"] = actions
	page["form_errors"] = errs.Form
	page["submitting"] = view.Snapshot.IsSubmitting
	return nil
}

func stepActions(view workflow.View, basePath string, chrome func(string, ...any) string) (string, error) {
	var nodes []ui.Node
	if !view.IsFirstStep() {
		back, err := ui.Button(ui.ButtonConfig{
			Label:      chrome(render.ChromeBack),
			Variant:    ui.ButtonSecondary,
			Icon:       "arrow-left",
			FormAction: joinURL(basePath, "back"),
			Disabled:   view.Snapshot.IsSubmitting,
		})
		if err != nil {
			return "", err
		}
		nodes = append(nodes, back)
	}

	label, icon := chrome(render.ChromeNext), "arrow-right"
	if view.IsLastStep() {
		label, icon = chrome(render.ChromeSubmit), "check"
	}
	next, err := ui.Button(ui.ButtonConfig{
		Label:   label,
		Variant: ui.ButtonPrimary,
		Icon:    icon,
		Loading: view.Snapshot.IsSubmitting,
	})
	if err != nil {
		return "", err
	}
	nodes = append(nodes, next)
	return ui.ToHTML(nodes...), nil
}

func (r *Renderer) outcomeData(page map[string]any, view workflow.View, opts render.RenderOptions) {
	completion := workflow.Completion{Outcome: view.Snapshot.Outcome}
	if view.Completion != nil {
		completion = *view.Completion
	}

	iconName := "check"
	switch completion.Outcome {
	case model.OutcomePersonalEmail:
		iconName = "alert-circle"
	case model.OutcomeCalendar:
		iconName = "calendar"
	}
	icon, err := ui.Icon(iconName, "lf-outcome-icon")
	if err == nil {
		page["icon"] = ui.ToHTML(icon)
	}

	page["completion"] = map[string]any{
		"outcome": string(completion.Outcome),
		"title":   completion.Title,
		"message": completion.Message,
		"action":  completion.Action,
	}
	if view.Phase == workflow.PhaseSelfServe {
		page["self_serve_url"] = r.selfServeURL
	}
	restart, err := ui.Button(ui.ButtonConfig{Label: render.Chrome(opts)(render.ChromeRestart), Variant: ui.ButtonGhost})
	if err == nil {
		page["restart"] = ui.ToHTML(restart)
	}
}

func (r *Renderer) bookingData(page map[string]any, view workflow.View) error {
	if view.Completion == nil || view.Completion.Booking == nil {
		return nil
	}
	booking := view.Completion.Booking
	page["booking"] = ui.ToHTML(bookingNode(*booking))
	if booking.URL != "" {
		page["booking_url"] = booking.URL
	}
	if booking.ScriptURL != "" {
		page["scripts"] = append(page["scripts"].([]map[string]any), map[string]any{
			"src":   booking.ScriptURL,
			"async": true,
		})
	}
	return nil
}

// bookingNode renders the calendar embed container. Provider attributes are
// emitted in sorted order; a booking URL becomes an inline frame.
func bookingNode(booking schedule.Booking) ui.Node {
	attrs := []ui.Attr{
		ui.A("class", ui.Cn("lf-booking", booking.Class)),
		ui.A("data-provider", booking.Provider),
	}
	keys := make([]string, 0, len(booking.Embed))
	for key := range booking.Embed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attrs = append(attrs, ui.A(key, booking.Embed[key]))
	}
	container := ui.El("div", attrs)
	if booking.URL != "" {
		container.Append(ui.El("iframe", []ui.Attr{
			ui.A("class", "lf-booking-frame"),
			ui.A("src", booking.URL),
			ui.A("title", "Book a time"),
			ui.A("loading", "lazy"),
		}))
	}
	return container
}

func (r *Renderer) scriptContext(scripts []components.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		if script.Src == "" {
			continue
		}
		out = append(out, map[string]any{
			"src":    assetURL(r.assetPrefix, script.Src),
			"defer":  script.Defer,
			"async":  script.Async,
			"module": script.Module,
		})
	}
	return out
}

func hiddenContext(fields map[string]string) []map[string]any {
	sorted := render.SortedHiddenFields(fields)
	out := make([]map[string]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

// ResolveTheme is a convenience for hosts: it resolves name and variant
// through selector with the vanilla template partials as fallbacks.
func ResolveTheme(selector *themes.Selector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("vanilla renderer: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return themes.RendererConfig(selection, DefaultPartials()), nil
}
