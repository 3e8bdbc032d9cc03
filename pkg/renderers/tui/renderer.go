package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/render"
)

// Name is the registry key of the terminal renderer.
const Name = "terminal"

const loadingText = "Processing..."

// Renderer implements render.BlockRenderer for terminals. Markup here is
// styled text: service strings are stripped of escape sequences instead of
// being entity-escaped, and results are always printed as plain text.
type Renderer struct {
	styles Styles
}

var _ render.BlockRenderer = (*Renderer)(nil)

// New constructs a terminal renderer with the default styles.
func New(options ...Option) *Renderer {
	r := &Renderer{styles: DefaultStyles()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Step(text string) (render.Block, error) {
	lead, rest, ok := render.SplitStep(clean(text))
	var b strings.Builder
	b.WriteString("• ")
	if ok {
		b.WriteString(r.styles.Lead.Render(lead))
	}
	b.WriteString(rest)
	return render.Block{Kind: render.BlockStep, Markup: b.String(), Scroll: render.RevealScroll}, nil
}

func (r *Renderer) Table(charTable model.CharTable) (render.Block, error) {
	headers := charTable.Headers
	t := table.New().
		Border(r.styles.Border).
		Headers(clean(headers.Char), clean(headers.OriginalByte), clean(headers.KeystreamByte), clean(headers.ResultByte)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, detail := range render.VisibleDetails(charTable.Details) {
		t.Row(
			"'"+clean(detail.Char)+"'",
			byteCell(detail.OriginalByte),
			byteCell(detail.KeystreamByte),
			byteCell(detail.ResultByte),
		)
	}

	markup := r.styles.Title.Render(render.TableTitle) + "\n" + t.String()
	if hidden := len(charTable.Details) - render.TableRowLimit; hidden > 0 {
		markup += "\n" + r.styles.Muted.Render(pluralRows(hidden))
	}
	return render.Block{Kind: render.BlockTable, Markup: markup, Scroll: render.RevealScroll}, nil
}

func (r *Renderer) Result(result string) (render.Block, error) {
	markup := r.styles.Title.Render(render.ResultTitle) + "\n" + r.styles.Result.Render(clean(result))
	return render.Block{Kind: render.BlockResult, Markup: markup, Scroll: render.RevealScroll}, nil
}

func (r *Renderer) Error(message string) (render.Block, error) {
	markup := r.styles.Error.Render("Error:") + " " + clean(message)
	return render.Block{Kind: render.BlockError, Markup: markup}, nil
}

func (r *Renderer) Loading() (render.Block, error) {
	return render.Block{Kind: render.BlockLoading, Markup: r.styles.Muted.Render(loadingText)}, nil
}

func (r *Renderer) Compose(blocks []render.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, block.Markup)
	}
	return strings.Join(parts, "\n")
}

// Divider separates consecutive results in a scrolling terminal.
func (r *Renderer) Divider() string {
	return r.styles.Muted.Render(r.styles.Divider)
}

func byteCell(view model.ByteView) string {
	return clean(view.Hex) + " (" + clean(view.Char) + ")"
}

// clean removes terminal control sequences from service text.
func clean(s string) string {
	return ansi.Strip(s)
}

func pluralRows(n int) string {
	if n == 1 {
		return "1 more row not shown"
	}
	return strconv.Itoa(n) + " more rows not shown"
}
