package html

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/render"
	rendertemplate "github.com/goliatone/go-cipherview/pkg/render/template"
	gotemplate "github.com/goliatone/go-cipherview/pkg/render/template/gotemplate"
)

// Name is the registry key of the HTML block renderer.
const Name = "html"

const loadingLabel = "Processing"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	options          render.RenderOptions
	resultPolicy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRenderOptions sets how service content is treated.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(cfg *config) {
		cfg.options = options
	}
}

// WithResultPolicy overrides the sanitizer used when results are trusted.
func WithResultPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.resultPolicy = policy
		}
	}
}

// Renderer produces HTML fragments for the result area and the full page.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	options      render.RenderOptions
	resultPolicy *bluemonday.Policy
}

var _ render.BlockRenderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		options:      cfg.options,
		resultPolicy: cfg.resultPolicy,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Step renders one narrative step. The lead up to the first colon is wrapped
// in <strong>; both halves are escaped by the template.
func (r *Renderer) Step(text string) (render.Block, error) {
	lead, rest, _ := render.SplitStep(text)
	markup, err := r.execute("templates/step", map[string]any{
		"lead": lead,
		"rest": rest,
	})
	if err != nil {
		return render.Block{}, err
	}
	return render.Block{Kind: render.BlockStep, Markup: markup, Scroll: render.RevealScroll}, nil
}

// Table renders the character breakdown, limited to render.TableRowLimit rows.
func (r *Renderer) Table(table model.CharTable) (render.Block, error) {
	visible := render.VisibleDetails(table.Details)
	rows := make([]map[string]any, 0, len(visible))
	for _, detail := range visible {
		rows = append(rows, map[string]any{
			"char": detail.Char,
			"bytes": []map[string]any{
				byteCell(detail.OriginalByte),
				byteCell(detail.KeystreamByte),
				byteCell(detail.ResultByte),
			},
		})
	}

	markup, err := r.execute("templates/table", map[string]any{
		"title": render.TableTitle,
		"headers": map[string]any{
			"char":           table.Headers.Char,
			"original_byte":  table.Headers.OriginalByte,
			"keystream_byte": table.Headers.KeystreamByte,
			"result_byte":    table.Headers.ResultByte,
		},
		"rows": rows,
	})
	if err != nil {
		return render.Block{}, err
	}
	return render.Block{Kind: render.BlockTable, Markup: markup, Scroll: render.RevealScroll}, nil
}

// Result renders the final result block. The result is escaped unless the
// renderer trusts results, in which case it is sanitized instead.
func (r *Renderer) Result(result string) (render.Block, error) {
	data := map[string]any{
		"title":   render.ResultTitle,
		"trusted": r.options.TrustResult,
		"result":  result,
	}
	if r.options.TrustResult {
		data["result_html"] = sanitizeResult(r.resultPolicy, result)
	}
	markup, err := r.execute("templates/result", data)
	if err != nil {
		return render.Block{}, err
	}
	return render.Block{Kind: render.BlockResult, Markup: markup, Scroll: render.RevealScroll}, nil
}

func (r *Renderer) Error(message string) (render.Block, error) {
	markup, err := r.execute("templates/error", map[string]any{"message": message})
	if err != nil {
		return render.Block{}, err
	}
	return render.Block{Kind: render.BlockError, Markup: markup}, nil
}

func (r *Renderer) Loading() (render.Block, error) {
	markup, err := r.execute("templates/loading", map[string]any{"label": loadingLabel})
	if err != nil {
		return render.Block{}, err
	}
	return render.Block{Kind: render.BlockLoading, Markup: markup}, nil
}

// Compose concatenates blocks, grouping consecutive steps inside a
// steps-container element the way the page script does for live appends.
func (r *Renderer) Compose(blocks []render.Block) string {
	var b strings.Builder
	inSteps := false
	for _, block := range blocks {
		if block.Kind == render.BlockStep && !inSteps {
			b.WriteString(`<div class="steps-container">`)
			inSteps = true
		}
		if block.Kind != render.BlockStep && inSteps {
			b.WriteString(`</div>`)
			inSteps = false
		}
		b.WriteString(block.Markup)
	}
	if inSteps {
		b.WriteString(`</div>`)
	}
	return b.String()
}

func (r *Renderer) execute(name string, data map[string]any) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("html renderer: template renderer is nil")
	}
	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

func byteCell(view model.ByteView) map[string]any {
	return map[string]any{
		"hex":  view.Hex,
		"char": view.Char,
	}
}
