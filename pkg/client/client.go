package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/pkg/contract"
	"github.com/goliatone/go-cipherview/pkg/model"
)

const (
	DefaultSeedPath    = "/generate-seed"
	DefaultProcessPath = "/process"

	maxBodyBytes = 8 << 20
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every call. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithSeedPath overrides the seed endpoint path.
func WithSeedPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.seedPath = path
		}
	}
}

// WithProcessPath overrides the processing endpoint path.
func WithProcessPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.processPath = path
		}
	}
}

// WithContract validates requests and responses against c.
func WithContract(ct *contract.Contract) Option {
	return func(c *Client) {
		c.contract = ct
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is safe for concurrent use.
type Client struct {
	base        *url.URL
	seedPath    string
	processPath string
	http        *http.Client
	timeout     time.Duration
	contract    *contract.Contract
	logger      *zap.Logger
}

// New builds a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrMisconfigured, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: base url %q must be http or https", ErrMisconfigured, baseURL)
	}

	c := &Client{
		base:        base,
		seedPath:    DefaultSeedPath,
		processPath: DefaultProcessPath,
		http:        http.DefaultClient,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GenerateSeed fetches a new seed. An empty seed is not an error.
func (c *Client) GenerateSeed(ctx context.Context) (model.SeedResponse, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.seedPath, nil)
	if err != nil {
		return model.SeedResponse{}, err
	}
	if status < 200 || status >= 300 {
		return model.SeedResponse{}, fmt.Errorf("%w: seed endpoint returned %d", ErrUnexpectedStatus, status)
	}
	if c.contract != nil {
		if err := c.contract.ValidateSeedResponse(body); err != nil {
			return model.SeedResponse{}, fmt.Errorf("client: seed response: %w", err)
		}
	}

	var out model.SeedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return model.SeedResponse{}, fmt.Errorf("client: decode seed response: %w", err)
	}
	return out, nil
}

// Transform submits req. A service-reported failure is returned as a
// TransformResponse holding an ErrorResponse, not as an error; errors are
// reserved for transport failures and contract violations.
func (c *Client) Transform(ctx context.Context, req model.TransformRequest) (model.TransformResponse, error) {
	if c.contract != nil {
		if err := c.contract.ValidateRequest(req); err != nil {
			return model.TransformResponse{}, fmt.Errorf("client: transform request: %w", err)
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return model.TransformResponse{}, fmt.Errorf("client: encode transform request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.processPath, payload)
	if err != nil {
		return model.TransformResponse{}, err
	}
	if c.contract != nil {
		if err := c.contract.ValidateProcessResponse(status, body); err != nil {
			return model.TransformResponse{}, fmt.Errorf("client: transform response: %w", err)
		}
	}

	if status < 200 || status >= 300 {
		var failure model.ErrorResponse
		if err := json.Unmarshal(body, &failure); err == nil && failure.Error != "" {
			return model.TransformResponse{Error: &failure}, nil
		}
		return model.TransformResponse{}, fmt.Errorf("%w: process endpoint returned %d", ErrUnexpectedStatus, status)
	}

	resp, err := model.DecodeTransformResponse(body)
	if err != nil {
		return model.TransformResponse{}, fmt.Errorf("client: decode transform response: %w", err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	target, err := c.resolve(path)
	if err != nil {
		return 0, nil, err
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("client: build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("client: %s %s: %w", method, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("client: read %s %s: %w", method, target, err)
	}

	c.logger.Debug("service call",
		zap.String("method", method),
		zap.String("endpoint", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp.StatusCode, data, nil
}

func (c *Client) resolve(path string) (string, error) {
	if c.base == nil {
		return "", errors.New("client: base url is not configured")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: parse path %q: %v", ErrMisconfigured, path, err)
	}
	out := *c.base
	out.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	out.RawQuery = ref.RawQuery
	return out.String(), nil
}
