package render

import (
	"context"

	"github.com/goliatone/go-leadform/pkg/workflow"
)

// Renderer converts the current view of a session into bytes (HTML, JSON,
// plain text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view workflow.View, options RenderOptions) ([]byte, error)
}
