package leadform

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/schedule"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

func TestAssetsFSContainsStylesheetAndScript(t *testing.T) {
	for _, name := range []string{"leadform.css", "leadform-combobox.js"} {
		if _, err := fs.ReadFile(AssetsFS(), name); err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
	}
}

func TestEmbeddedTemplatesIncludeLayout(t *testing.T) {
	data, err := fs.ReadFile(EmbeddedTemplates(), "templates/layout.tmpl")
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if !strings.Contains(string(data), "{{ content|safe }}") {
		t.Fatalf("expected layout to embed the rendered content")
	}
}

func TestRenderShortcuts(t *testing.T) {
	engine, err := NewEngine(workflow.WithScheduler(schedule.NewCalcom("")))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	session := engine.NewSession("sess-1")

	html, err := RenderHTML(context.Background(), session, RenderOptions{BasePath: "/demo"})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(string(html), "Step 1 of 3") {
		t.Fatalf("expected first step in html output")
	}

	data, err := RenderJSON(context.Background(), session, RenderOptions{})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	var payload render.ViewPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.SessionID != "sess-1" || payload.Step != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestNewHandlerServesHealth(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	handler, err := NewHandler(engine)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
