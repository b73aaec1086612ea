package vanilla_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/testsupport"
	"github.com/goliatone/go-leadform/pkg/themes"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func newSession(t *testing.T, opts ...workflow.Option) *workflow.Session {
	t.Helper()
	base := []workflow.Option{workflow.WithLogger(testsupport.QuietLogger())}
	engine, err := workflow.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine.NewSession("s1")
}

func renderView(t *testing.T, renderer *vanilla.Renderer, view workflow.View, opts render.RenderOptions) string {
	t.Helper()
	if opts.BasePath == "" {
		opts.BasePath = "/demo"
	}
	out, err := renderer.Render(testsupport.Context(), view, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Fatalf("expected output to omit %q\n%s", fragment, html)
		}
	}
}

func TestRenderer_FirstStep(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t)

	html := renderView(t, renderer, session.View(nil), render.RenderOptions{
		Hidden: map[string]string{render.HiddenCSRF: "tok"},
	})

	assertContains(t, html,
		"<!DOCTYPE html>",
		`<link rel="stylesheet" href="/assets/leadform.css">`,
		`data-phase="step"`,
		`<form class="lf-form" method="post" action="/demo/steps/1" novalidate>`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<input type="hidden" name="step" value="1">`,
		"Step 1 of 3",
		`<input type="email" id="lf-email" name="email" value="" placeholder="john@company.com" class="lf-input" maxlength="255" required>`,
		`<label for="lf-first_name" class="lf-label">First name<span class="lf-required" aria-hidden="true">*</span></label>`,
		"<span>Next</span>",
	)
	assertNotContains(t, html, `formaction="/demo/back"`, "leadform-combobox.js")

	firstName := strings.Index(html, `id="lf-first_name"`)
	lastName := strings.Index(html, `id="lf-last_name"`)
	email := strings.Index(html, `id="lf-email"`)
	if !(firstName < lastName && lastName < email) {
		t.Fatalf("fields out of declaration order: %d %d %d", firstName, lastName, email)
	}
}

func TestRenderer_RejectedSubmissionKeepsDraftAndShowsError(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t)
	draft := map[string]string{"first_name": "Ann", "email": "not-an-email"}
	if err := session.SubmitStep(testsupport.Context(), 1, draft); err != nil {
		t.Fatalf("submit: %v", err)
	}

	html := renderView(t, renderer, session.View(draft), render.RenderOptions{})
	assertContains(t, html,
		`value="not-an-email"`,
		`class="lf-input lf-invalid"`,
		`aria-invalid="true" aria-describedby="lf-email-error"`,
		`<p id="lf-email-error" class="lf-error" role="alert">Please enter a valid email address</p>`,
		`value="Ann"`,
	)
}

func TestRenderer_FormLevelErrors(t *testing.T) {
	renderer := newRenderer(t)
	html := renderView(t, renderer, newSession(t).View(nil), render.RenderOptions{
		Errors: map[string][]string{"__all__": {"Too many attempts"}},
	})
	assertContains(t, html, `<div class="lf-errors" role="alert"><p>Too many attempts</p></div>`)
}

func TestRenderer_SecondStepHasBackAndCombobox(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t)
	if err := session.SubmitStep(testsupport.Context(), 1, map[string]string{"first_name": "Ann", "email": "ann@acmecorp.com"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	html := renderView(t, renderer, session.View(nil), render.RenderOptions{})
	assertContains(t, html,
		`action="/demo/steps/2"`,
		`formaction="/demo/back"`,
		"<span>Back</span>",
		`<option value="Select" selected disabled>Select</option>`,
		`data-lf-endpoint="/demo/options/how_did_you_hear_about_us"`,
		`data-value="Word of Mouth"`,
		`<script src="/assets/leadform-combobox.js" defer></script>`,
	)
}

func TestRenderer_SelfServeCopies(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithSelfServeURL("https://build.example.com"))

	personal := newSession(t)
	if err := personal.SubmitStep(testsupport.Context(), 1, map[string]string{"first_name": "Ann", "email": "ann@gmail.com"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	html := renderView(t, renderer, personal.View(nil), render.RenderOptions{})
	assertContains(t, html,
		`data-phase="self-serve"`,
		`data-outcome="personal-email"`,
		"Looks like you signed up with a personal email.",
		`<a class="lf-button lf-button-primary" href="https://build.example.com">Start building</a>`,
		`action="/demo/reset"`,
		"<span>Start over</span>",
	)
	assertNotContains(t, html, `name="step"`)

	small := newSession(t)
	if err := small.SubmitStep(testsupport.Context(), 1, map[string]string{"first_name": "Ann", "email": "ann@acmecorp.com"}); err != nil {
		t.Fatalf("submit step 1: %v", err)
	}
	if err := small.SubmitStep(testsupport.Context(), 2, map[string]string{"num_employees": "2-5"}); err != nil {
		t.Fatalf("submit step 2: %v", err)
	}
	html = renderView(t, renderer, small.View(nil), render.RenderOptions{})
	assertContains(t, html,
		`data-outcome="small-company"`,
		"Teams your size get the most out of our self-serve plan.",
	)
}

func completeSession(t *testing.T, session *workflow.Session) {
	t.Helper()
	steps := []map[string]string{
		{"first_name": "Ann", "last_name": "Lee", "email": "ann@acmecorp.com"},
		{"num_employees": "500+"},
		{"company_name": "Acme", "job_title": "CTO"},
	}
	for i, values := range steps {
		if err := session.SubmitStep(testsupport.Context(), model.StepID(i+1), values); err != nil {
			t.Fatalf("submit step %d: %v", i+1, err)
		}
	}
}

func TestRenderer_CalendarCompletion(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t, workflow.WithScheduler(schedule.NewCalcom("")))
	completeSession(t, session)

	html := renderView(t, renderer, session.View(nil), render.RenderOptions{})
	assertContains(t, html,
		`data-phase="completed"`,
		`data-outcome="calendar"`,
		"Book a time with our team",
		`class="lf-booking" data-provider="calcom" data-cal-config=`,
		`data-cal-link="forms/f87bd9b2-b339-4915-b4d4-0098e2db4394"`,
		`src="https://cal.com/forms/f87bd9b2-b339-4915-b4d4-0098e2db4394?email=ann%40acmecorp.com&amp;name=Ann+Lee"`,
	)
}

func TestRenderer_LemcalScript(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t, workflow.WithScheduler(schedule.NewLemcal("", "")))
	completeSession(t, session)

	html := renderView(t, renderer, session.View(nil), render.RenderOptions{})
	assertContains(t, html,
		`class="lf-booking lemcal-embed-booking-calendar" data-provider="lemcal"`,
		`<script src="https://cdn.lemcal.com/lemcal-integrations.min.js" async></script>`,
	)
	assertNotContains(t, html, "<iframe")
}

func TestRenderer_ThankYouWithoutScheduler(t *testing.T) {
	renderer := newRenderer(t)
	session := newSession(t)
	completeSession(t, session)

	html := renderView(t, renderer, session.View(nil), render.RenderOptions{})
	assertContains(t, html, `data-outcome="thank-you"`, "Thanks, we will be in touch")
	assertNotContains(t, html, "lf-booking")
}

func TestRenderer_DarkTheme(t *testing.T) {
	selector, err := themes.NewSelector("", "")
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	cfg, err := vanilla.ResolveTheme(selector, "", themes.VariantDark)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	html := renderView(t, newRenderer(t), newSession(t).View(nil), render.RenderOptions{Theme: cfg})
	assertContains(t, html,
		`data-theme="leadform" data-variant="dark"`,
		"--background: #111113;",
		`<link rel="stylesheet" href="/assets/leadform.css">`,
	)
}

func TestRenderer_FragmentWithCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/step.tmpl":       {Data: []byte("{{ step.title }}|{{ progress }}")},
		"templates/alt_step.tmpl":   {Data: []byte("alt:{{ step.title }}")},
		"templates/layout.tmpl":     {Data: []byte("unused")},
		"templates/self_serve.tmpl": {Data: []byte("self-serve")},
		"templates/completed.tmpl":  {Data: []byte("completed")},
	}
	renderer := newRenderer(t, vanilla.WithTemplatesFS(files), vanilla.WithFragment())

	html := renderView(t, renderer, newSession(t).View(nil), render.RenderOptions{})
	if html != "Contact|Step 1 of 3" {
		t.Fatalf("unexpected fragment %q", html)
	}

	selector, err := themes.NewSelector("", "")
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	selection.Manifest.Templates = map[string]string{vanilla.PartialStep: "templates/alt_step.tmpl"}
	cfg := themes.RendererConfig(selection, vanilla.DefaultPartials())

	html = renderView(t, renderer, newSession(t).View(nil), render.RenderOptions{Theme: cfg})
	if html != "alt:Contact" {
		t.Fatalf("theme partial not applied: %q", html)
	}
}

func TestRenderer_Localized(t *testing.T) {
	translator := render.TranslatorFunc(func(_ string, key string, _ ...any) (string, error) {
		if key == "leadform.demo.steps.1.title" {
			return "Kontakt", nil
		}
		return "", errors.New("missing")
	})
	html := renderView(t, newRenderer(t), newSession(t).View(nil), render.RenderOptions{Locale: "de", Translator: translator})
	assertContains(t, html, `<html lang="de"`, `<h2 class="lf-subtitle">Kontakt</h2>`, "First name")
}

func TestRenderer_LocalizedChrome(t *testing.T) {
	catalog := map[string]string{
		render.ChromeBack:         "Zurück",
		render.ChromeNext:         "Weiter",
		render.ChromeSubmit:       "Absenden",
		render.ChromeOpenCalendar: "Kalender öffnen",
	}
	translator := render.TranslatorFunc(func(locale, key string, args ...any) (string, error) {
		if locale != "de" {
			return "", errors.New("missing")
		}
		if key == render.ChromeProgress {
			return fmt.Sprintf("Schritt %d von %d", args...), nil
		}
		if v, ok := catalog[key]; ok {
			return v, nil
		}
		return "", errors.New("missing")
	})
	opts := render.RenderOptions{Locale: "de", Translator: translator}

	session := newSession(t)
	if err := session.SubmitStep(testsupport.Context(), 1, map[string]string{"first_name": "Ann", "email": "ann@acmecorp.com"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	html := renderView(t, newRenderer(t), session.View(nil), opts)
	assertContains(t, html, "Schritt 2 von 3", "<span>Zurück</span>", "<span>Weiter</span>")
	assertNotContains(t, html, "<span>Next</span>")

	calendar := newSession(t, workflow.WithScheduler(schedule.NewCalcom("")))
	completeSession(t, calendar)
	html = renderView(t, newRenderer(t), calendar.View(nil), opts)
	assertContains(t, html, ">Kalender öffnen</a>", "<span>Start over</span>")
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, newSession(t).View(nil), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_ComboboxOptions(t *testing.T) {
	renderer := newRenderer(t)
	def := model.MustDefaultDefinition()
	field, ok := def.Field("how_did_you_hear_about_us")
	if !ok {
		t.Fatalf("missing combobox field")
	}

	out, err := renderer.ComboboxOptions(field, "", "so")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	want := `<li id="lf-how_did_you_hear_about_us-option-0" role="option" class="lf-combobox-option" data-value="Social Media">Social Media</li>`
	if string(out) != want {
		t.Fatalf("unexpected options:\n%s", out)
	}

	out, err = renderer.ComboboxOptions(field, "", "zzz")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if !strings.Contains(string(out), "No results found") {
		t.Fatalf("expected empty state, got %s", out)
	}

	email, _ := def.Field("email")
	if _, err := renderer.ComboboxOptions(email, "", ""); err == nil {
		t.Fatalf("expected error for non-combobox field")
	}
}

func TestAssetsFS(t *testing.T) {
	for _, name := range []string{vanilla.StylesheetName, "leadform-combobox.js"} {
		if _, err := vanilla.AssetsFS().Open(name); err != nil {
			t.Fatalf("asset %s: %v", name, err)
		}
	}
}
