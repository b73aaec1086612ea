package ui_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/collection"
	"github.com/goliatone/go-leadform/pkg/ui"
)

func mustHTML(t *testing.T, node ui.Node, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("build node: %v", err)
	}
	return ui.ToHTML(node)
}

func TestToHTML_EscapesText(t *testing.T) {
	node := ui.El("p", []ui.Attr{ui.A("title", `"quoted"`)}, ui.Text("<b>&</b>"), ui.Raw("<i>ok</i>"))
	want := `<p title="&#34;quoted&#34;">&lt;b&gt;&amp;&lt;/b&gt;<i>ok</i></p>`
	if diff := cmp.Diff(want, ui.ToHTML(node)); diff != "" {
		t.Fatalf("html mismatch (-want +got):\n%s", diff)
	}
	if got := ui.ToHTML(ui.Fragment{ui.Text("a"), nil, ui.Text("b")}); got != "ab" {
		t.Fatalf("fragment: got %q", got)
	}
}

func TestCn(t *testing.T) {
	got := ui.Cn("lf-input  lf-invalid", "", "custom lf-input", " extra ")
	if diff := cmp.Diff("lf-input lf-invalid custom extra", got); diff != "" {
		t.Fatalf("cn mismatch (-want +got):\n%s", diff)
	}
}

func TestInput(t *testing.T) {
	node, err := ui.Input(ui.InputConfig{
		ID:        "lf-email",
		Name:      "email",
		Type:      "email",
		Value:     "a&b",
		Required:  true,
		MaxLength: 255,
		Invalid:   true,
		Attrs:     ui.Attrs{"data-step": "1"},
	})
	want := `<input type="email" id="lf-email" name="email" value="a&amp;b" class="lf-input lf-invalid" maxlength="255" required aria-invalid="true" data-step="1">`
	if diff := cmp.Diff(want, mustHTML(t, node, err)); diff != "" {
		t.Fatalf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownProps(t *testing.T) {
	bad := ui.Attrs{"onclick": "alert(1)"}
	checks := map[string]error{}
	_, checks["input"] = ui.Input(ui.InputConfig{Name: "x", Attrs: bad})
	_, checks["textarea"] = ui.Textarea(ui.TextareaConfig{Name: "x", Attrs: bad})
	_, checks["select"] = ui.Select(ui.SelectConfig{Name: "x", Attrs: bad})
	_, checks["button"] = ui.Button(ui.ButtonConfig{Label: "Go", Attrs: bad})
	_, checks["combobox"] = ui.NewCombobox(ui.ComboboxConfig{Name: "x", Attrs: bad}, collection.RenderFunc[string, ui.Node]{})
	_, checks["variant"] = ui.Button(ui.ButtonConfig{Label: "Go", Variant: "fancy"})
	for name, err := range checks {
		if !errors.Is(err, ui.ErrUnknownProp) {
			t.Fatalf("%s: expected unknown prop error, got %v", name, err)
		}
	}

	if _, err := ui.Input(ui.InputConfig{Name: "x", Attrs: ui.Attrs{"aria-describedby": "hint", "data-x": "1"}}); err != nil {
		t.Fatalf("data and aria attributes must be accepted: %v", err)
	}
}

func TestSelect_RendersOptionsInOrder(t *testing.T) {
	node, err := ui.Select(ui.SelectConfig{
		ID:       "num_employees",
		Name:     "num_employees",
		Options:  []string{"1", "2-5"},
		Value:    "2-5",
		Required: true,
	})
	want := `<select id="num_employees" name="num_employees" class="lf-input lf-select" required>` +
		`<option value="Select" disabled>Select</option>` +
		`<option value="1">1</option>` +
		`<option value="2-5" selected>2-5</option>` +
		`</select>`
	if diff := cmp.Diff(want, mustHTML(t, node, err)); diff != "" {
		t.Fatalf("select mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_PlaceholderSelectedByDefault(t *testing.T) {
	node, err := ui.Select(ui.SelectConfig{Name: "level", Options: []string{"Neutral"}, Value: "bogus"})
	got := mustHTML(t, node, err)
	if !strings.Contains(got, `<option value="Select" selected>Select</option>`) {
		t.Fatalf("expected placeholder to be selected, got %s", got)
	}
}

func TestTextarea(t *testing.T) {
	node, err := ui.Textarea(ui.TextareaConfig{ID: "tools", Name: "internal_tools", Value: "<CRM>", MaxLength: 800})
	want := `<textarea id="tools" name="internal_tools" rows="4" class="lf-input lf-textarea" maxlength="800">&lt;CRM&gt;</textarea>`
	if diff := cmp.Diff(want, mustHTML(t, node, err)); diff != "" {
		t.Fatalf("textarea mismatch (-want +got):\n%s", diff)
	}
}

func TestButton(t *testing.T) {
	node, err := ui.Button(ui.ButtonConfig{Label: "Back", Variant: ui.ButtonSecondary, FormAction: "/demo/back", Type: "submit"})
	want := `<button type="submit" class="lf-button lf-button-secondary" formaction="/demo/back"><span>Back</span></button>`
	if diff := cmp.Diff(want, mustHTML(t, node, err)); diff != "" {
		t.Fatalf("button mismatch (-want +got):\n%s", diff)
	}

	loading, err := ui.Button(ui.ButtonConfig{Label: "Submitting", Loading: true})
	got := mustHTML(t, loading, err)
	for _, fragment := range []string{" disabled", `aria-busy="true"`, "<svg", "lf-spin"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("loading button missing %q: %s", fragment, got)
		}
	}
}

func TestCombobox_FilterCallsRenderOnlyForMatches(t *testing.T) {
	var calls []string
	fn := collection.WithItemAndIndex(func(item string, index int) ui.Node {
		calls = append(calls, item)
		return ui.ComboboxOption("src", item, index, false)
	})
	box, err := ui.NewCombobox(ui.ComboboxConfig{
		ID:    "src",
		Name:  "how_did_you_hear_about_us",
		Items: []string{"Google Search", "Social Media", "Word of Mouth", "Blog"},
	}, fn)
	if err != nil {
		t.Fatalf("new combobox: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("render function called eagerly: %v", calls)
	}

	nodes, err := box.Filter("OG")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if diff := cmp.Diff([]string{"Google Search", "Blog"}, calls); diff != "" {
		t.Fatalf("render calls mismatch (-want +got):\n%s", diff)
	}
	want := `<li id="src-option-0" role="option" class="lf-combobox-option" data-value="Google Search">Google Search</li>` +
		`<li id="src-option-1" role="option" class="lf-combobox-option" data-value="Blog">Blog</li>`
	if diff := cmp.Diff(want, ui.ToHTML(nodes...)); diff != "" {
		t.Fatalf("filtered options mismatch (-want +got):\n%s", diff)
	}

	none, err := box.Filter("zzz")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no matches, got %d (%v)", len(none), err)
	}
}

func TestCombobox_NodeShowsEmptyState(t *testing.T) {
	box, err := ui.NewCombobox(ui.ComboboxConfig{ID: "c", Name: "c", Items: []string{"Blog"}, Endpoint: "/demo/options/c"}, collection.RenderFunc[string, ui.Node]{})
	if err != nil {
		t.Fatalf("new combobox: %v", err)
	}
	node, err := box.Node("nothing")
	got := mustHTML(t, node, err)
	for _, fragment := range []string{`data-lf-endpoint="/demo/options/c"`, `aria-controls="c-listbox"`, "No results found"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("combobox missing %q: %s", fragment, got)
		}
	}
}

func TestCombobox_NilNodeIsContractError(t *testing.T) {
	box, err := ui.NewCombobox(ui.ComboboxConfig{Name: "c", Items: []string{"a"}}, collection.WithItem(func(string) ui.Node { return nil }))
	if err != nil {
		t.Fatalf("new combobox: %v", err)
	}
	if _, err := box.Filter(""); !errors.Is(err, collection.ErrNotComponent) {
		t.Fatalf("expected not-component error, got %v", err)
	}
}

func TestIcon(t *testing.T) {
	node, err := ui.Icon("check", "extra")
	got := mustHTML(t, node, err)
	for _, fragment := range []string{"<svg", `class="lf-icon lf-icon-check extra"`, "<polyline", "</svg>"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("icon missing %q: %s", fragment, got)
		}
	}
	if _, err := ui.Icon("rocket", ""); !errors.Is(err, ui.ErrUnknownIcon) {
		t.Fatalf("expected unknown icon error, got %v", err)
	}
	if len(ui.IconNames()) == 0 {
		t.Fatalf("expected built-in icons")
	}
}

func TestSanitizeSVG(t *testing.T) {
	got := ui.SanitizeSVG(`<svg onload="alert(1)"><script>alert(1)</script><path d="M0 0" onclick="x"></path></svg>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onload") || strings.Contains(got, "onclick") {
		t.Fatalf("unsafe markup survived: %s", got)
	}
	if !strings.Contains(got, `<path d="M0 0">`) {
		t.Fatalf("expected path to survive: %s", got)
	}
}
