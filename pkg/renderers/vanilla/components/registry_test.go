package components

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/ui"
)

func noopRenderer(model.FieldDefinition, ComponentData) (ui.Node, error) { return ui.Text(""), nil }

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	if err := reg.Register("test", Descriptor{Renderer: noopRenderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("TEST")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("test")
	if diff := cmp.Diff([]string{"/a.css"}, original.Stylesheets); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}
	if err := reg.Register("", Descriptor{Renderer: noopRenderer}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := reg.Register("x", Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister("text", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/input.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("select", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/select.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Src: "/select.js"}},
	})

	styles, scripts := reg.Assets([]string{"text", "select", "missing"})
	if diff := cmp.Diff([]string{"/shared.css", "/input.css", "/select.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Script{{Src: "/shared.js"}, {Src: "/select.js"}}, scripts); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistryCoversFieldKinds(t *testing.T) {
	reg := NewDefaultRegistry()
	want := []string{NameCombobox, NameEmail, NameSelect, NameText, NameTextarea}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	field := model.FieldDefinition{Name: "internal_tools", Kind: model.FieldKindTextarea, MaxLength: 800}
	desc, _ := reg.Descriptor(NameTextarea)
	node, err := desc.Renderer(field, ComponentData{ID: "lf-internal_tools", Value: "CRM", Invalid: true, ErrorID: "lf-internal_tools-error"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want2 := `<textarea id="lf-internal_tools" name="internal_tools" rows="4" class="lf-input lf-textarea lf-invalid" maxlength="800" aria-invalid="true" aria-describedby="lf-internal_tools-error">CRM</textarea>`
	if diff := cmp.Diff(want2, ui.ToHTML(node)); diff != "" {
		t.Fatalf("textarea mismatch (-want +got):\n%s", diff)
	}
}
