package template

import (
	"io"
)

// TemplateRenderer is the seam HTML renderers depend on. The gotemplate
// package provides the pongo2-backed implementation; tests and hosts may
// supply their own.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
