package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for terminal blocks. Keep them free of
// layout so output stays readable when piped.
type Styles struct {
	Lead    lipgloss.Style
	Title   lipgloss.Style
	Result  lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Border  lipgloss.Border
	Divider string
}

// DefaultStyles mirrors the page palette.
func DefaultStyles() Styles {
	return Styles{
		Lead:    lipgloss.NewStyle().Bold(true),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb")),
		Result:  lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Border:  lipgloss.NormalBorder(),
		Divider: "────────",
	}
}

// Option configures the terminal renderer.
type Option func(*Renderer)

// WithStyles overrides the default styles.
func WithStyles(styles Styles) Option {
	return func(r *Renderer) {
		r.styles = styles
	}
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithPromptDriver overrides the prompt driver used by the console.
func WithPromptDriver(driver PromptDriver) ConsoleOption {
	return func(c *Console) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithOutput sets where revealed blocks are printed.
func WithOutput(out io.Writer) ConsoleOption {
	return func(c *Console) {
		if out != nil {
			c.out = out
		}
	}
}

// WithChoices sets the operations offered by the operation prompt.
func WithChoices(choices ...Choice) ConsoleOption {
	return func(c *Console) {
		c.choices = append([]Choice(nil), choices...)
	}
}
