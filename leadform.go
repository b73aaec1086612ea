// Package leadform is the top-level entry point of the lead form module. It
// re-exports the types most hosts need and offers shortcuts for mounting the
// form over HTTP or rendering a session directly.
package leadform

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/renderers/vanilla"
	"github.com/goliatone/go-leadform/pkg/server"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

// Engine holds the form definition and collaborators shared by sessions.
type Engine = workflow.Engine

// Session is one user's pass through the form.
type Session = workflow.Session

// Snapshot is a point-in-time copy of session state.
type Snapshot = workflow.Snapshot

// View is everything a renderer needs to draw the current screen.
type View = workflow.View

// RenderOptions carry per-request data such as hidden inputs, extra errors
// and the theme.
type RenderOptions = render.RenderOptions

// NewEngine constructs a workflow engine. Without options it runs the
// embedded demo definition with the default validation rules.
func NewEngine(options ...workflow.Option) (*Engine, error) {
	return workflow.New(options...)
}

// NewHandler mounts the form routes, health, metrics and asset endpoints for
// engine.
func NewHandler(engine *Engine, options ...server.Option) (http.Handler, error) {
	srv, err := server.New(engine, options...)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

// RenderHTML draws the session's current screen with the vanilla renderer.
func RenderHTML(ctx context.Context, session *Session, opts RenderOptions, options ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, session.View(nil), opts)
}

// RenderJSON encodes the session's current screen as a view payload.
func RenderJSON(ctx context.Context, session *Session, opts RenderOptions) ([]byte, error) {
	return render.JSONRenderer{}.Render(ctx, session.View(nil), opts)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or override them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and combobox script.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(leadform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
