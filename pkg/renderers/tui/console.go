package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-cipherview/pkg/orchestrator"
	"github.com/goliatone/go-cipherview/pkg/present"
	"github.com/goliatone/go-cipherview/pkg/render"
	"github.com/goliatone/go-cipherview/pkg/resultarea"
)

// Choice is one operation offered by the operation prompt.
type Choice struct {
	Value string
	Label string
}

// RunOptions pre-fill the prompts. Values apply to the first round only.
type RunOptions struct {
	Text      string
	Seed      string
	Operation string
	// Once skips the "run again" prompt.
	Once bool
}

// Console drives an orchestrator session from a terminal: it prompts for the
// form, submits it and prints blocks as the session reveals them.
type Console struct {
	renderer *Renderer
	driver   PromptDriver
	out      io.Writer
	choices  []Choice

	dirty bool
}

// NewConsole builds a console printing with renderer. The session passed to
// Run must use the same renderer.
func NewConsole(renderer *Renderer, opts ...ConsoleOption) *Console {
	c := &Console{renderer: renderer, out: os.Stdout}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = New()
	}
	if c.driver == nil {
		c.driver = NewSurveyDriver(c.out)
	}
	return c
}

// Run prompts, submits and waits for each reveal to settle until the user
// stops or opts.Once is set.
func (c *Console) Run(ctx context.Context, session *orchestrator.Session, opts RunOptions) error {
	if session == nil {
		return errors.New("tui: session is required")
	}
	unsubscribe := session.Area().Subscribe(c.print)
	defer unsubscribe()

	for {
		form, operation, err := c.collect(ctx, session, opts)
		if err != nil {
			return err
		}
		session.SetForm(form)

		outcome := session.Submit(ctx, operation)
		if err := outcome.Wait(ctx); err != nil && !errors.Is(err, present.ErrStale) {
			return err
		}
		if opts.Once {
			return nil
		}

		again, err := c.driver.Confirm(ctx, ConfirmConfig{
			Message: "Run another transformation?",
			Default: true,
		})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		opts = RunOptions{}
	}
}

func (c *Console) collect(ctx context.Context, session *orchestrator.Session, opts RunOptions) (orchestrator.Form, string, error) {
	text := opts.Text
	if text == "" {
		var err error
		text, err = c.driver.TextArea(ctx, TextAreaConfig{Message: "Text to transform"})
		if err != nil {
			return orchestrator.Form{}, "", err
		}
	}

	seed, err := c.seed(ctx, session, opts.Seed)
	if err != nil {
		return orchestrator.Form{}, "", err
	}

	operation, err := c.operation(ctx, opts.Operation)
	if err != nil {
		return orchestrator.Form{}, "", err
	}
	return orchestrator.Form{Text: text, Seed: seed}, operation, nil
}

// seed prompts until it has a seed. An empty answer asks the service for
// one; a failed request is already on screen, so the prompt is repeated.
func (c *Console) seed(ctx context.Context, session *orchestrator.Session, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	for {
		seed, err := c.driver.Input(ctx, InputConfig{
			Message: "Security seed",
			Help:    "Leave empty to ask the service for a new seed.",
		})
		if err != nil {
			return "", err
		}
		if seed != "" {
			return seed, nil
		}

		var generated string
		stop := session.OnSeed(func(s string) { generated = s })
		err = session.RequestSeed(ctx)
		stop()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			continue
		}
		if generated == "" {
			continue
		}
		if err := c.driver.Info(ctx, "Generated seed: "+generated); err != nil {
			return "", err
		}
		return generated, nil
	}
}

func (c *Console) operation(ctx context.Context, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	switch len(c.choices) {
	case 0:
		return "", ErrNoChoices
	case 1:
		return c.choices[0].Value, nil
	}

	labels := make([]string, 0, len(c.choices))
	for _, choice := range c.choices {
		labels = append(labels, choice.Label)
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: "Operation", Options: labels})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(c.choices) {
		return "", fmt.Errorf("tui: operation index %d out of range", idx)
	}
	return c.choices[idx].Value, nil
}

// print runs under the area lock, so calls are serialised.
func (c *Console) print(evt resultarea.Event) {
	switch evt.Kind {
	case resultarea.EventAppend:
		c.write(evt.Block)
	case resultarea.EventReplace:
		if c.dirty {
			fmt.Fprintln(c.out, c.renderer.Divider())
			c.dirty = false
		}
		for _, block := range evt.Blocks {
			c.write(block)
		}
	}
}

func (c *Console) write(block render.Block) {
	fmt.Fprintln(c.out, block.Markup)
	if block.Kind != render.BlockLoading {
		c.dirty = true
	}
}
