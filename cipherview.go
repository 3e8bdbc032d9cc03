package cipherview

import (
	"context"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/internal/config"
	"github.com/goliatone/go-cipherview/internal/server"
	"github.com/goliatone/go-cipherview/pkg/client"
	"github.com/goliatone/go-cipherview/pkg/contract"
	"github.com/goliatone/go-cipherview/pkg/orchestrator"
	"github.com/goliatone/go-cipherview/pkg/render"
	"github.com/goliatone/go-cipherview/pkg/renderers/html"
	"github.com/goliatone/go-cipherview/pkg/renderers/tui"
)

// Config aliases the resolved application configuration.
type Config = config.Config

// RenderOptions aliases render.RenderOptions for callers tuning renderers.
type RenderOptions = render.RenderOptions

// LoadConfig resolves defaults, the optional YAML file and CIPHERVIEW_*
// environment overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return config.Default()
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can extend
// them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// RuntimeAssetsFS exposes the stylesheet and browser runtime.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(cipherview.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}

// DefaultThemeTokens are the palette the embedded stylesheet reads.
func DefaultThemeTokens() map[string]string {
	return map[string]string{
		"brand":   "#2f6fde",
		"error":   "#b3261e",
		"surface": "#ffffff",
		"text":    "#1d1d1f",
	}
}

// ThemeSelection builds the page theme from configuration. Configured tokens
// override the defaults; the "dark" variant ships with the module.
func ThemeSelection(cfg config.ThemeConfig) (*theme.Selection, error) {
	tokens := DefaultThemeTokens()
	for key, value := range cfg.Tokens {
		tokens[key] = value
	}
	manifest := &theme.Manifest{
		Name:    cfg.Name,
		Version: "1.0.0",
		Tokens:  tokens,
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"surface": "#16181d",
					"text":    "#e8e8ea",
				},
			},
		},
	}
	selector, err := html.NewStaticSelector(manifest)
	if err != nil {
		return nil, err
	}
	return selector.Select(cfg.Name, cfg.Variant)
}

// App bundles the collaborators built from one configuration.
type App struct {
	Config    Config
	Logger    *zap.Logger
	Contract  *contract.Contract
	Client    *client.Client
	Renderers *render.Registry

	html     *html.Renderer
	terminal *tui.Renderer
}

// NewApp loads the service contract and builds the HTTP client.
func NewApp(ctx context.Context, cfg Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ct, err := contract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cipherview: load contract: %w", err)
	}
	svc, err := client.New(cfg.Service.BaseURL,
		client.WithSeedPath(cfg.Service.SeedPath),
		client.WithProcessPath(cfg.Service.ProcessPath),
		client.WithTimeout(cfg.Service.Timeout),
		client.WithContract(ct),
		client.WithLogger(logger.Named("client")),
	)
	if err != nil {
		return nil, fmt.Errorf("cipherview: build client: %w", err)
	}

	htmlRenderer, err := html.New(html.WithRenderOptions(render.RenderOptions{
		TrustResult: cfg.Presentation.TrustResult,
	}))
	if err != nil {
		return nil, fmt.Errorf("cipherview: html renderer: %w", err)
	}
	terminal := tui.New()

	registry := render.NewRegistry()
	registry.MustRegister(htmlRenderer)
	registry.MustRegister(terminal)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Contract:  ct,
		Client:    svc,
		Renderers: registry,
		html:      htmlRenderer,
		terminal:  terminal,
	}, nil
}

// HTMLRenderer returns the browser renderer.
func (a *App) HTMLRenderer() *html.Renderer {
	return a.html
}

// TerminalRenderer returns the console renderer.
func (a *App) TerminalRenderer() *tui.Renderer {
	return a.terminal
}

// Server builds the interactive web server.
func (a *App) Server() (*server.Server, error) {
	selection, err := ThemeSelection(a.Config.Theme)
	if err != nil {
		return nil, fmt.Errorf("cipherview: theme: %w", err)
	}
	return server.New(a.Client, a.html,
		server.WithLogger(a.Logger.Named("server")),
		server.WithContract(a.Contract),
		server.WithTheme(selection),
		server.WithTick(a.Config.Presentation.RevealTick),
		server.WithIdleTTL(a.Config.Session.IdleTTL),
		server.WithSubmitLimit(a.Config.Session.SubmitRate, a.Config.Session.SubmitBurst),
	)
}

// Session opens a standalone session rendering with the named renderer
// ("html" or "terminal").
func (a *App) Session(ctx context.Context, rendererName string) (*orchestrator.Session, error) {
	renderer, err := a.Renderers.Get(rendererName)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(a.Client, renderer,
		orchestrator.WithTick(a.Config.Presentation.RevealTick),
		orchestrator.WithLogger(a.Logger.Named("session")),
		orchestrator.WithContext(ctx),
	)
}

// Choices lists the contract operations for the console prompt.
func (a *App) Choices() []tui.Choice {
	ops := a.Contract.Operations()
	out := make([]tui.Choice, 0, len(ops))
	for _, op := range ops {
		out = append(out, tui.Choice{Value: op.Value, Label: op.Label})
	}
	return out
}
