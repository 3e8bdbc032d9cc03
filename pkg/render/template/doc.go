// Package template defines the renderer-agnostic template contract block
// renderers depend on, so the pongo2 engine in gotemplate can be swapped for a
// stub in tests.
package template
