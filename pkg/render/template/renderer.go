package template

import (
	"io"
)

// TemplateRenderer is the engine seam HTML renderers depend on. Renderers
// pass view structs as data; engines decide how to expose them to templates.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
