package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cipherview/pkg/contract"
	"github.com/goliatone/go-cipherview/pkg/model"
)

func newServiceStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithContract(contract.MustLoad())}, opts...)
	c, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClient_TransformSuccess(t *testing.T) {
	var received model.TransformRequest
	srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/process" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"steps":["Step 1: a","Step 2: b"],"result":"42"}`))
	})

	c := newTestClient(t, srv.URL+"/api/")
	req := model.TransformRequest{Text: "hi", Seed: "seed", Operation: "encrypt"}
	resp, err := c.Transform(context.Background(), req)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if diff := cmp.Diff(req, received); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	want := model.TransformResponse{Success: &model.SuccessResponse{
		Steps:  []string{"Step 1: a", "Step 2: b"},
		Result: "42",
	}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_TransformServiceError(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{name: "ok status", status: http.StatusOK},
		{name: "bad request", status: http.StatusBadRequest},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"bad seed"}`))
			})

			resp, err := newTestClient(t, srv.URL).Transform(context.Background(), model.TransformRequest{Text: "a", Seed: "b", Operation: "decrypt"})
			if err != nil {
				t.Fatalf("transform: %v", err)
			}
			if !resp.IsError() || resp.Error.Error != "bad seed" {
				t.Fatalf("expected service error, got %+v", resp)
			}
		})
	}
}

func TestClient_TransformTransportErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "status without error body", status: http.StatusBadGateway, body: `{"detail":"down"}`, wantErr: ErrUnexpectedStatus},
		{name: "malformed json", status: http.StatusOK, body: `{"steps":`, wantErr: contract.ErrViolation},
		{name: "neither variant", status: http.StatusOK, body: `{"other":1}`, wantErr: model.ErrMalformedResponse},
		{name: "contract violation", status: http.StatusOK, body: `{"steps":[1,2],"result":"x"}`, wantErr: contract.ErrViolation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := newTestClient(t, srv.URL).Transform(context.Background(), model.TransformRequest{Text: "a", Seed: "b", Operation: "encrypt"})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestClient_TransformRejectsUnknownOperationWithoutCalling(t *testing.T) {
	called := false
	srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := newTestClient(t, srv.URL).Transform(context.Background(), model.TransformRequest{Text: "a", Seed: "b", Operation: "rot13"})
	if !errors.Is(err, contract.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if called {
		t.Fatalf("service must not be called for an invalid request")
	}
}

func TestClient_TransformNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := newTestClient(t, baseURL).Transform(context.Background(), model.TransformRequest{Text: "a", Seed: "b", Operation: "encrypt"})
	if err == nil {
		t.Fatalf("expected network error")
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := newTestClient(t, srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.GenerateSeed(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestClient_GenerateSeed(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{name: "seed", status: http.StatusOK, body: `{"seed":"a1B2c3D4e5F6g7H8"}`, want: "a1B2c3D4e5F6g7H8"},
		{name: "empty object", status: http.StatusOK, body: `{}`, want: ""},
		{name: "non ok", status: http.StatusInternalServerError, body: `{"error":"x"}`, wantErr: true},
		{name: "not json", status: http.StatusOK, body: `seed`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServiceStub(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/generate-seed" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			got, err := newTestClient(t, srv.URL).GenerateSeed(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("generate seed: %v", err)
			}
			if got.Seed != tc.want {
				t.Fatalf("seed mismatch: want %q, got %q", tc.want, got.Seed)
			}
		})
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := New(raw); !errors.Is(err, ErrMisconfigured) {
			t.Fatalf("expected ErrMisconfigured for %q, got %v", raw, err)
		}
	}
}
