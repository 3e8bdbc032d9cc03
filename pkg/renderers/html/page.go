package html

import (
	theme "github.com/goliatone/go-theme"
)

// PageTitle is the heading of the interactive page.
const PageTitle = "Cipher Visualizer"

// OperationChoice is one submit button on the page.
type OperationChoice struct {
	Value string
	Label string
}

// PageData describes the full document served at the session root.
type PageData struct {
	Title         string
	StylesheetURL string
	ScriptURL     string
	SubmitURL     string
	SeedURL       string
	EventsURL     string
	Text          string
	Seed          string
	Operations    []OperationChoice
	ResultMarkup  string
	Theme         *theme.Selection
}

// Page renders the whole document. ResultMarkup is embedded verbatim and must
// come from Compose.
func (r *Renderer) Page(data PageData) (string, error) {
	title := data.Title
	if title == "" {
		title = PageTitle
	}

	operations := make([]map[string]any, 0, len(data.Operations))
	for _, op := range data.Operations {
		operations = append(operations, map[string]any{
			"value": op.Value,
			"label": op.Label,
		})
	}

	themeName, variant := "", ""
	if data.Theme != nil {
		themeName, variant = data.Theme.Theme, data.Theme.Variant
	}

	return r.execute("templates/page", map[string]any{
		"title":         title,
		"stylesheet":    data.StylesheetURL,
		"script":        data.ScriptURL,
		"submit_url":    data.SubmitURL,
		"seed_url":      data.SeedURL,
		"events_url":    data.EventsURL,
		"text":          data.Text,
		"seed":          data.Seed,
		"operations":    operations,
		"result_markup": data.ResultMarkup,
		"css_vars":      CSSVars(SelectionTokens(data.Theme)),
		"theme":         themeName,
		"variant":       variant,
	})
}
