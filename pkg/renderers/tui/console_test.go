package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/orchestrator"
)

type stubDriver struct {
	inputs       []string
	textAreas    []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	selectSeen   [][]string
	inputPos     int
	textPos      int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectSeen = append(s.selectSeen, cfg.Options)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no text scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type scriptedService struct {
	mu       sync.Mutex
	requests []model.TransformRequest
	seed     string
	seedErrs []error
}

func (s *scriptedService) GenerateSeed(context.Context) (model.SeedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seedErrs) > 0 {
		err := s.seedErrs[0]
		s.seedErrs = s.seedErrs[1:]
		return model.SeedResponse{}, err
	}
	return model.SeedResponse{Seed: s.seed}, nil
}

func (s *scriptedService) Transform(_ context.Context, req model.TransformRequest) (model.TransformResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return model.TransformResponse{Success: &model.SuccessResponse{
		Steps:  []string{"Step 1: " + req.Operation},
		Result: "out:" + req.Text,
	}}, nil
}

func newConsoleSession(t *testing.T, service orchestrator.Service, renderer *Renderer) *orchestrator.Session {
	t.Helper()
	session, err := orchestrator.New(service, renderer, orchestrator.WithTick(time.Millisecond))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

var testChoices = []Choice{
	{Value: "encrypt", Label: "Encrypt"},
	{Value: "decrypt", Label: "Decrypt"},
}

func TestConsole_RunOnceWithPresets(t *testing.T) {
	renderer := New()
	service := &scriptedService{}
	session := newConsoleSession(t, service, renderer)

	var out bytes.Buffer
	driver := &stubDriver{}
	console := NewConsole(renderer, WithOutput(&out), WithPromptDriver(driver), WithChoices(testChoices...))

	err := console.Run(context.Background(), session, RunOptions{Text: "hi", Seed: "s", Operation: "decrypt", Once: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []model.TransformRequest{{Text: "hi", Seed: "s", Operation: "decrypt"}}
	if diff := cmp.Diff(want, service.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}

	printed := ansi.Strip(out.String())
	for _, fragment := range []string{"Processing...", "• Step 1: decrypt", "Final Result:", "out:hi"} {
		if !strings.Contains(printed, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, printed)
		}
	}
	if strings.Index(printed, "Step 1") > strings.Index(printed, "Final Result:") {
		t.Fatalf("result printed before steps:\n%s", printed)
	}
	if driver.confirmPos != 0 {
		t.Fatalf("--once must not ask to run again")
	}
}

func TestConsole_PromptsGeneratesSeedAndRepeats(t *testing.T) {
	renderer := New()
	service := &scriptedService{seed: "a1B2c3D4e5F6g7H8"}
	session := newConsoleSession(t, service, renderer)

	var out bytes.Buffer
	driver := &stubDriver{
		textAreas: []string{"first", "second"},
		inputs:    []string{"", "manual"},
		selectIdx: []int{0, 1},
		confirm:   []bool{true, false},
	}
	console := NewConsole(renderer, WithOutput(&out), WithPromptDriver(driver), WithChoices(testChoices...))

	if err := console.Run(context.Background(), session, RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []model.TransformRequest{
		{Text: "first", Seed: "a1B2c3D4e5F6g7H8", Operation: "encrypt"},
		{Text: "second", Seed: "manual", Operation: "decrypt"},
	}
	if diff := cmp.Diff(want, service.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Generated seed: a1B2c3D4e5F6g7H8"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Encrypt", "Decrypt"}, driver.selectSeen[0]); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(ansi.Strip(out.String()), renderer.styles.Divider) {
		t.Fatalf("expected a divider between runs:\n%s", out.String())
	}
}

func TestConsole_SeedFailureRepromptsInsteadOfExiting(t *testing.T) {
	renderer := New()
	service := &scriptedService{seed: "k3yK3yk3yK3yk3yK", seedErrs: []error{errors.New("seed service down")}}
	session := newConsoleSession(t, service, renderer)

	var out bytes.Buffer
	driver := &stubDriver{inputs: []string{"", ""}}
	console := NewConsole(renderer, WithOutput(&out), WithPromptDriver(driver), WithChoices(testChoices...))

	err := console.Run(context.Background(), session, RunOptions{Text: "hi", Operation: "encrypt", Once: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if driver.inputPos != 2 {
		t.Fatalf("expected the seed prompt twice, got %d", driver.inputPos)
	}
	if !strings.Contains(ansi.Strip(out.String()), orchestrator.MessageSeedFailed) {
		t.Fatalf("expected seed failure message:\n%s", out.String())
	}
	want := []model.TransformRequest{{Text: "hi", Seed: "k3yK3yk3yK3yk3yK", Operation: "encrypt"}}
	if diff := cmp.Diff(want, service.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestConsole_SeedFailureStopsOnCancelledContext(t *testing.T) {
	renderer := New()
	service := &scriptedService{seedErrs: []error{context.Canceled}}
	session := newConsoleSession(t, service, renderer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	console := NewConsole(renderer, WithOutput(&bytes.Buffer{}), WithPromptDriver(&stubDriver{inputs: []string{""}}), WithChoices(testChoices...))
	err := console.Run(ctx, session, RunOptions{Text: "hi", Once: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(service.requests) != 0 {
		t.Fatalf("cancelled run must not submit")
	}
}

func TestConsole_ValidationMessageForEmptyText(t *testing.T) {
	renderer := New()
	service := &scriptedService{}
	session := newConsoleSession(t, service, renderer)

	var out bytes.Buffer
	console := NewConsole(renderer, WithOutput(&out), WithPromptDriver(&stubDriver{textAreas: []string{""}}), WithChoices(testChoices[0]))

	if err := console.Run(context.Background(), session, RunOptions{Seed: "s", Once: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(service.requests) != 0 {
		t.Fatalf("empty text must not reach the service")
	}
	if !strings.Contains(ansi.Strip(out.String()), orchestrator.MessageMissingInput) {
		t.Fatalf("expected validation message:\n%s", out.String())
	}
}

func TestConsole_AbortPropagates(t *testing.T) {
	renderer := New()
	session := newConsoleSession(t, &scriptedService{}, renderer)

	console := NewConsole(renderer, WithOutput(&bytes.Buffer{}), WithPromptDriver(&stubDriver{}), WithChoices(testChoices...))
	if err := console.Run(context.Background(), session, RunOptions{}); err == nil {
		t.Fatalf("expected prompt error to stop the console")
	}
}
