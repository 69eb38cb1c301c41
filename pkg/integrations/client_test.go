package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/catup/pkg/cache"
)

func testClient(t *testing.T, headers map[string]string) *Client {
	t.Helper()
	ns := cache.Open(cache.NewNullBackend()).Namespace("test")
	return NewClient(ns, headers, WithRetry(3, time.Millisecond))
}

func TestNewClient(t *testing.T) {
	client := testClient(t, map[string]string{"Authorization": "Bearer token"})

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache == nil {
		t.Error("NewClient() cache not set")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := testClient(t, nil)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var receivedDefault, receivedOverride string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedDefault = r.Header.Get("X-Default")
		receivedOverride = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := testClient(t, map[string]string{"X-Default": "default", "X-Override": "default"})

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if receivedDefault != "default" {
		t.Errorf("default header = %q, want %q", receivedDefault, "default")
	}
	if receivedOverride != "overridden" {
		t.Errorf("header = %q, want %q", receivedOverride, "overridden")
	}
}

func TestClientPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["query"]})
	}))
	defer server.Close()

	client := testClient(t, nil)

	var resp map[string]string
	if err := client.PostJSON(context.Background(), server.URL, map[string]string{"query": "{ viewer }"}, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if resp["echo"] != "{ viewer }" {
		t.Errorf("PostJSON() echo = %q", resp["echo"])
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var resp map[string]string
	err := testClient(t, nil).Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if cache.IsRetryable(err) {
		t.Error("404 should not be retryable")
	}
}

func TestClientGet500IsRetryable(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		var resp map[string]string
		err := testClient(t, nil).Get(context.Background(), server.URL, &resp)
		server.Close()

		if !errors.Is(err, ErrNetwork) {
			t.Errorf("status %d: error = %v, want ErrNetwork", code, err)
		}
		if !cache.IsRetryable(err) {
			t.Errorf("status %d: error should be retryable, got %T", code, err)
		}
	}
}

func TestClientGet403IsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	var resp map[string]string
	err := testClient(t, nil).Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNetwork) || cache.IsRetryable(err) {
		t.Errorf("Get() error = %v, want permanent ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	client := testClient(t, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	for range 2 {
		var data testData
		if err := client.Cached(context.Background(), "key", &data, fetch(&data)); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		if data.Value != "fetched" {
			t.Errorf("Cached() value = %q, want %q", data.Value, "fetched")
		}
	}
	if fetchCount != 1 {
		t.Errorf("fetch called %d times, want 1", fetchCount)
	}
}

func TestClientCachedRetriesAndRecordsFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky":
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]int{"n": 1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := testClient(t, nil)

	var flaky map[string]int
	err := client.Cached(ctx, "flaky", &flaky, func() error { return client.Get(ctx, server.URL+"/flaky", &flaky) })
	if err != nil || flaky["n"] != 1 {
		t.Fatalf("Cached(flaky) = %v, %v", flaky, err)
	}
	if hits.Load() != 3 {
		t.Errorf("flaky endpoint hit %d times, want 3", hits.Load())
	}

	calls := 0
	missing := func() error {
		calls++
		var v map[string]int
		return client.Get(ctx, server.URL+"/missing", &v)
	}
	var v map[string]int
	if err := client.Cached(ctx, "missing", &v, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("first lookup error = %v, want ErrNotFound", err)
	}
	var recorded *cache.RecordedError
	if err := client.Cached(ctx, "missing", &v, missing); !errors.As(err, &recorded) {
		t.Fatalf("second lookup error = %v, want RecordedError", err)
	}
	if calls != 1 {
		t.Errorf("missing endpoint called %d times, want 1", calls)
	}
}

func TestClientHTTPHooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	hooks := &countingHTTPHooks{}
	ns := cache.Open(nil).Namespace("test")
	client := NewClient(ns, nil, WithHTTPHooks(hooks))

	var v map[string]any
	if err := client.Get(context.Background(), server.URL+"/path", &v); err != nil {
		t.Fatal(err)
	}
	if hooks.requests != 1 || hooks.responses != 1 || hooks.lastStatus != 200 || hooks.lastPath != "/path" {
		t.Errorf("unexpected hook calls: %+v", hooks)
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"git+https://github.com/foo/bar.git", "https://github.com/foo/bar"},
		{"git@github.com:foo/bar.git", "https://github.com/foo/bar"},
		{"http://github.com/foo/bar/", "https://github.com/foo/bar"},
		{" https://github.com/foo/bar ", "https://github.com/foo/bar"},
		{"ssh://git@github.com/foo/bar.git", "https://github.com/foo/bar"},
		{"https://www.github.com/foo/bar", "https://github.com/foo/bar"},
	}
	for _, tt := range tests {
		if got := NormalizeRepoURL(tt.in); got != tt.want {
			t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type countingHTTPHooks struct {
	requests, responses, errors int
	lastStatus                  int
	lastPath                    string
}

func (h *countingHTTPHooks) OnRequest(_ context.Context, _, _, path string) {
	h.requests++
	h.lastPath = path
}

func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.responses++
	h.lastStatus = status
}

func (h *countingHTTPHooks) OnError(context.Context, string, string, string, error) {
	h.errors++
}
