package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/goliatone/go-cipherview/pkg/model"
)

// ErrUnscripted is returned by Service calls that have no behaviour
// configured.
var ErrUnscripted = errors.New("testsupport: call not scripted")

// Service is a scripted cipher service. It records every transform request.
type Service struct {
	mu        sync.Mutex
	transform func(ctx context.Context, req model.TransformRequest) (model.TransformResponse, error)
	seed      func(ctx context.Context) (model.SeedResponse, error)
	requests  []model.TransformRequest
	seedCalls int
}

// OnTransform scripts Transform.
func (s *Service) OnTransform(fn func(ctx context.Context, req model.TransformRequest) (model.TransformResponse, error)) *Service {
	s.mu.Lock()
	s.transform = fn
	s.mu.Unlock()
	return s
}

// Respond makes every Transform call return resp.
func (s *Service) Respond(resp model.TransformResponse) *Service {
	return s.OnTransform(func(context.Context, model.TransformRequest) (model.TransformResponse, error) {
		return resp, nil
	})
}

// Seed makes GenerateSeed return seed.
func (s *Service) Seed(seed string) *Service {
	s.mu.Lock()
	s.seed = func(context.Context) (model.SeedResponse, error) {
		return model.SeedResponse{Seed: seed}, nil
	}
	s.mu.Unlock()
	return s
}

func (s *Service) Transform(ctx context.Context, req model.TransformRequest) (model.TransformResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	fn := s.transform
	s.mu.Unlock()
	if fn == nil {
		return model.TransformResponse{}, ErrUnscripted
	}
	return fn(ctx, req)
}

func (s *Service) GenerateSeed(ctx context.Context) (model.SeedResponse, error) {
	s.mu.Lock()
	s.seedCalls++
	fn := s.seed
	s.mu.Unlock()
	if fn == nil {
		return model.SeedResponse{}, ErrUnscripted
	}
	return fn(ctx)
}

// Requests returns a copy of the recorded transform requests.
func (s *Service) Requests() []model.TransformRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TransformRequest(nil), s.requests...)
}

// SeedCalls reports how often GenerateSeed ran.
func (s *Service) SeedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedCalls
}

// Success builds a success response without a table.
func Success(result string, steps ...string) model.TransformResponse {
	return model.TransformResponse{Success: &model.SuccessResponse{Steps: steps, Result: result}}
}

// Failure builds a service-reported error response.
func Failure(message string) model.TransformResponse {
	return model.TransformResponse{Error: &model.ErrorResponse{Error: message}}
}

// FixturePath resolves name inside the shared testdata directory.
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// MustReadFixture returns the raw bytes of a shared fixture.
func MustReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// LoadTransformResponse decodes a fixture the way the client decodes service
// bodies.
func LoadTransformResponse(name string) (model.TransformResponse, error) {
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		return model.TransformResponse{}, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	resp, err := model.DecodeTransformResponse(data)
	if err != nil {
		return model.TransformResponse{}, fmt.Errorf("testsupport: decode %s: %w", name, err)
	}
	return resp, nil
}

// MustLoadTransformResponse is LoadTransformResponse for tests.
func MustLoadTransformResponse(t *testing.T, name string) model.TransformResponse {
	t.Helper()
	resp, err := LoadTransformResponse(name)
	if err != nil {
		t.Fatalf("load response: %v", err)
	}
	return resp
}
