package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cipherview/pkg/model"
)

func TestLoad_EmbeddedDocument(t *testing.T) {
	c, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.SeedPath() != "/generate-seed" {
		t.Fatalf("unexpected seed path %q", c.SeedPath())
	}
	if c.ProcessPath() != "/process" {
		t.Fatalf("unexpected process path %q", c.ProcessPath())
	}

	want := []Operation{
		{Value: "encrypt", Label: "Encrypt"},
		{Value: "decrypt", Label: "Decrypt"},
	}
	if diff := cmp.Diff(want, c.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RejectsDocumentsWithoutOperations(t *testing.T) {
	doc := []byte(`openapi: 3.0.3
info:
  title: other
  version: "1"
paths:
  /health:
    get:
      responses:
        "200":
          description: ok
`)
	if _, err := Parse(context.Background(), doc); err == nil {
		t.Fatalf("expected error for document without cipher operations")
	}
	if _, err := Parse(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestContract_ValidateRequest(t *testing.T) {
	c := MustLoad()

	if err := c.ValidateRequest(model.TransformRequest{Text: "hi", Seed: "s", Operation: "encrypt"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	err := c.ValidateRequest(model.TransformRequest{Text: "hi", Seed: "s", Operation: "rot13"})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}

	err = c.ValidateRequest(model.TransformRequest{Text: "", Seed: "s", Operation: "decrypt"})
	if !errors.Is(err, ErrViolation) {
		t.Fatalf("expected ErrViolation for empty text, got %v", err)
	}
}

func TestContract_ValidateProcessResponse(t *testing.T) {
	c := MustLoad()

	cases := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "success", status: 200, body: `{"steps":["Step 1: a"],"result":"42"}`},
		{name: "success with table", status: 200, body: `{"steps":[],"result":"x","table_headers":{"char":"C"},"char_details":[{"char":"a","original_byte":{"hex":"0x61","char":"a"}}]}`},
		{name: "service error on 400", status: 400, body: `{"error":"bad seed"}`},
		{name: "400 without error", status: 400, body: `{"message":"nope"}`, wantErr: true},
		{name: "steps wrong type", status: 200, body: `{"steps":"one","result":"x"}`, wantErr: true},
		{name: "not json", status: 200, body: `<html>`, wantErr: true},
		{name: "undocumented status", status: 502, body: `{"anything":true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.ValidateProcessResponse(tc.status, []byte(tc.body))
			if tc.wantErr {
				if !errors.Is(err, ErrViolation) {
					t.Fatalf("expected ErrViolation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestContract_ValidateSeedResponse(t *testing.T) {
	c := MustLoad()

	if err := c.ValidateSeedResponse([]byte(`{"seed":"abc"}`)); err != nil {
		t.Fatalf("valid seed rejected: %v", err)
	}
	if err := c.ValidateSeedResponse([]byte(`{}`)); err != nil {
		t.Fatalf("seedless body should pass the contract: %v", err)
	}
	if err := c.ValidateSeedResponse([]byte(`{"seed":7}`)); !errors.Is(err, ErrViolation) {
		t.Fatalf("expected ErrViolation, got %v", err)
	}
}

func TestDocument_ReturnsCopy(t *testing.T) {
	doc := Document()
	doc[0] = 'X'
	if Document()[0] == 'X' {
		t.Fatalf("Document must return a copy")
	}
}
