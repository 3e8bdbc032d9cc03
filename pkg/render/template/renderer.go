package template

import (
	"io"
)

// TemplateRenderer is the seam block renderers use to execute named
// templates.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
}
