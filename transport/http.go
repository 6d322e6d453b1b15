package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "http://localhost:8080"

const RequestIDHeader = "X-Request-Id"

// HTTP is a Transport speaking JSON over HTTP.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
	token      string // optional bearer token
	headers    http.Header
}

// Option configures an HTTP transport.
type Option func(*HTTP)

func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		h.httpClient.Timeout = timeout
	}
}

func WithToken(token string) Option {
	return func(h *HTTP) {
		h.token = token
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(h *HTTP) {
		h.headers.Add(key, value)
	}
}

// WithHTTPClient sends requests through a copy of c. Options applied after it,
// like WithTimeout, change the copy and never c.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		copied := *c
		h.httpClient = &copied
	}
}

func NewHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) BaseURL() string {
	return h.baseURL
}

func (h *HTTP) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return h.do(ctx, http.MethodGet, target, nil)
}

func (h *HTTP) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return h.do(ctx, http.MethodPost, path, body)
}

func (h *HTTP) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return h.do(ctx, http.MethodPut, path, body)
}

func (h *HTTP) Delete(ctx context.Context, path string) error {
	_, err := h.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (h *HTTP) do(ctx context.Context, method, path string, body any) ([]byte, error) {

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %w", ErrTransport, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for key, values := range h.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(method, path, resp.StatusCode, payload)
	}

	return emptyAsNil(payload), nil
}

// parseError reads the {"error":{"message","description"}} envelope when the
// body carries one.
func parseError(method, path string, status int, payload []byte) error {
	e := &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: status,
	}
	if !gjson.ValidBytes(payload) {
		return e
	}

	fields := gjson.GetManyBytes(payload, "error.message", "error.description")
	e.Message = fields[0].String()
	if description := fields[1].String(); description != "" {
		e.Message += ": " + description
	}
	return e
}

func emptyAsNil(payload []byte) []byte {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	return trimmed
}
