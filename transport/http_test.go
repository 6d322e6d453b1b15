package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
)

// --- Helpers ---

func mockServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *HTTP) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, NewHTTP(ts.URL)
}

func jsonHandler(t *testing.T, statusCode int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if body != nil {
			if err := json.MarshalWrite(w, body); err != nil {
				t.Errorf("failed to encode response: %v", err)
			}
		}
	}
}

// --- Options ---

func TestNewHTTP(t *testing.T) {
	h := NewHTTP("http://localhost:8080/")
	if h.BaseURL() != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", h.BaseURL())
	}
	if h.httpClient.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", h.httpClient.Timeout)
	}
}

func TestNewHTTP_Options(t *testing.T) {
	h := NewHTTP(DefaultBaseURL, WithTimeout(5*time.Second), WithToken("secret"), WithHeader("X-Tenant", "acme"))
	if h.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.httpClient.Timeout)
	}
	if h.token != "secret" {
		t.Errorf("token = %q, want %q", h.token, "secret")
	}
	if h.headers.Get("X-Tenant") != "acme" {
		t.Errorf("header X-Tenant = %q, want %q", h.headers.Get("X-Tenant"), "acme")
	}
}

func TestWithHTTPClient_Copies(t *testing.T) {
	c := &http.Client{Timeout: time.Minute}
	h := NewHTTP(DefaultBaseURL, WithHTTPClient(c), WithTimeout(5*time.Second))
	if c.Timeout != time.Minute {
		t.Errorf("caller client timeout = %v, want 1m", c.Timeout)
	}
	if h.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.httpClient.Timeout)
	}
	if h.httpClient == c {
		t.Errorf("client is shared with the caller")
	}
}

// --- Requests ---

func TestHTTP_Get(t *testing.T) {
	var got *http.Request
	_, h := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		jsonHandler(t, 200, []map[string]any{{"id": 1}})(w, r)
	})

	payload, err := h.Get(context.Background(), "users", url.Values{"name": {"a"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(payload) != `[{"id":1}]` {
		t.Errorf("payload = %s", payload)
	}
	if got.URL.Path != "/users" || got.URL.Query().Get("name") != "a" {
		t.Errorf("request = %s", got.URL.String())
	}
	if got.Header.Get(RequestIDHeader) == "" {
		t.Errorf("missing %s header", RequestIDHeader)
	}
}

func TestHTTP_PostSendsJSON(t *testing.T) {
	var body map[string]any
	var contentType, authorization string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		authorization = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.WriteHeader(http.StatusCreated)
		w.Write(b)
	}))
	t.Cleanup(ts.Close)

	h := NewHTTP(ts.URL, WithToken("secret"))
	payload, err := h.Post(context.Background(), "/users", map[string]any{"name": "a"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if string(payload) != `{"name":"a"}` {
		t.Errorf("payload = %s", payload)
	}
	if body["name"] != "a" {
		t.Errorf("server received %v", body)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if authorization != "Bearer secret" {
		t.Errorf("Authorization = %q", authorization)
	}
}

func TestHTTP_EmptyBodies(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no content": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
		"null": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null\n"))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			_, h := mockServer(t, handler)
			payload, err := h.Put(context.Background(), "users/1", map[string]any{"id": 1})
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if payload != nil {
				t.Errorf("payload = %q, want nil", payload)
			}
		})
	}
}

func TestHTTP_StatusError(t *testing.T) {
	_, h := mockServer(t, jsonHandler(t, 404, map[string]any{
		"error": map[string]any{"message": "item not found", "description": "item '7' not found"},
	}))

	err := h.Delete(context.Background(), "users/7")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Delete() error = %v, want ErrTransport", err)
	}
	statusErr := &StatusError{}
	if !errors.As(err, &statusErr) {
		t.Fatalf("Delete() error = %T, want *StatusError", err)
	}
	if statusErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
	if statusErr.Message != "item not found: item '7' not found" {
		t.Errorf("Message = %q", statusErr.Message)
	}
}

func TestHTTP_ConnectionRefused(t *testing.T) {
	h := NewHTTP("http://127.0.0.1:1")
	_, err := h.Get(context.Background(), "users", nil)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Get() error = %v, want ErrTransport", err)
	}
}

func TestHTTP_ContextCancelled(t *testing.T) {
	_, h := mockServer(t, jsonHandler(t, 200, []any{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Get(ctx, "users", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

// --- Helpers ---

func TestEncodeParams(t *testing.T) {
	values := EncodeParams(map[string]any{
		"name":  "a",
		"age":   3,
		"tags":  []any{"x", "y"},
		"empty": nil,
	})
	if values.Encode() != "age=3&name=a&tags=x&tags=y" {
		t.Errorf("EncodeParams() = %q", values.Encode())
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("users", "a b/c"); got != "users/a%20b%2Fc" {
		t.Errorf("JoinPath() = %q", got)
	}
}

func TestFuncs_NotImplemented(t *testing.T) {
	f := &Funcs{}
	if err := f.Delete(context.Background(), "users/1"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Delete() error = %v, want ErrNotImplemented", err)
	}
}

func TestHTTP_StatusErrorWithoutEnvelope(t *testing.T) {
	_, h := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := h.Get(context.Background(), "users", nil)
	statusErr := &StatusError{}
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get() error = %T, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", statusErr.StatusCode)
	}
	if statusErr.Message != "" {
		t.Errorf("Message = %q, want empty", statusErr.Message)
	}
}
