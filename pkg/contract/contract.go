package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-cipherview/pkg/model"
)

//go:embed openapi.yaml
var embeddedDocument []byte

const (
	SeedOperationID    = "generateSeed"
	ProcessOperationID = "process"

	operationField = "operation"
	mediaTypeJSON  = "application/json"
)

// Operation is one transformation mode the service accepts.
type Operation struct {
	Value string
	Label string
}

// Contract holds the schemas of the two service endpoints.
type Contract struct {
	seedPath         string
	processPath      string
	seedResponse     *openapi3.Schema
	processRequest   *openapi3.Schema
	processResponses map[string]*openapi3.Schema
	operations       []Operation
}

// Document returns the embedded OpenAPI document.
func Document() []byte {
	out := make([]byte, len(embeddedDocument))
	copy(out, embeddedDocument)
	return out
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return Parse(ctx, embeddedDocument)
}

// Parse loads and validates an OpenAPI document describing the service.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{processResponses: make(map[string]*openapi3.Schema)}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		if op := item.Get; op != nil && op.OperationID == SeedOperationID {
			c.seedPath = path
			c.seedResponse = responseSchemas(op.Responses)["200"]
		}
		if op := item.Post; op != nil && op.OperationID == ProcessOperationID {
			c.processPath = path
			c.processRequest = requestSchema(op.RequestBody)
			c.processResponses = responseSchemas(op.Responses)
		}
	}

	if c.seedPath == "" {
		return nil, fmt.Errorf("contract: operation %q not found", SeedOperationID)
	}
	if c.processPath == "" || c.processRequest == nil {
		return nil, fmt.Errorf("contract: operation %q not found", ProcessOperationID)
	}

	c.operations = operationsFromSchema(c.processRequest)
	if len(c.operations) == 0 {
		return nil, errors.New("contract: process request declares no operations")
	}
	return c, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Contract {
	c, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Contract) SeedPath() string {
	return c.seedPath
}

func (c *Contract) ProcessPath() string {
	return c.processPath
}

// Operations lists the operation enum in document order.
func (c *Contract) Operations() []Operation {
	out := make([]Operation, len(c.operations))
	copy(out, c.operations)
	return out
}

// HasOperation reports whether value is part of the operation enum.
func (c *Contract) HasOperation(value string) bool {
	for _, op := range c.operations {
		if op.Value == value {
			return true
		}
	}
	return false
}

// ValidateRequest checks a transformation request before it is sent.
func (c *Contract) ValidateRequest(req model.TransformRequest) error {
	if !c.HasOperation(req.Operation) {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
	return visit(c.processRequest, req, "process request")
}

// ValidateProcessResponse checks a processing response body against the schema
// declared for its status code. Statuses the document does not describe are
// accepted as long as the body is JSON.
func (c *Contract) ValidateProcessResponse(status int, body []byte) error {
	value, err := decodeJSON(body)
	if err != nil {
		return err
	}
	schema, ok := c.processResponses[strconv.Itoa(status)]
	if !ok {
		schema = c.processResponses["default"]
	}
	if schema == nil {
		return nil
	}
	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: process response %d: %v", ErrViolation, status, err)
	}
	return nil
}

// ValidateSeedResponse checks a seed response body.
func (c *Contract) ValidateSeedResponse(body []byte) error {
	value, err := decodeJSON(body)
	if err != nil {
		return err
	}
	if c.seedResponse == nil {
		return nil
	}
	if err := c.seedResponse.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: seed response: %v", ErrViolation, err)
	}
	return nil
}

func visit(schema *openapi3.Schema, payload any, label string) error {
	if schema == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("contract: encode %s: %w", label, err)
	}
	value, err := decodeJSON(raw)
	if err != nil {
		return err
	}
	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrViolation, label, err)
	}
	return nil
}

func decodeJSON(body []byte) (any, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("%w: body is not JSON: %v", ErrViolation, err)
	}
	return value, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	if mt, ok := body.Value.Content[mediaTypeJSON]; ok && mt.Schema != nil {
		return mt.Schema.Value
	}
	return nil
}

func responseSchemas(responses *openapi3.Responses) map[string]*openapi3.Schema {
	out := make(map[string]*openapi3.Schema)
	if responses == nil {
		return out
	}
	for status, ref := range responses.Map() {
		if ref == nil || ref.Value == nil {
			continue
		}
		mt, ok := ref.Value.Content[mediaTypeJSON]
		if !ok || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		out[status] = mt.Schema.Value
	}
	return out
}

func operationsFromSchema(schema *openapi3.Schema) []Operation {
	if schema == nil {
		return nil
	}
	prop, ok := schema.Properties[operationField]
	if !ok || prop == nil || prop.Value == nil {
		return nil
	}
	operations := make([]Operation, 0, len(prop.Value.Enum))
	seen := make(map[string]struct{}, len(prop.Value.Enum))
	for _, raw := range prop.Value.Enum {
		value, ok := raw.(string)
		if !ok || value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		operations = append(operations, Operation{Value: value, Label: operationLabel(value)})
	}
	return operations
}

func operationLabel(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '_' || r == '-' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

