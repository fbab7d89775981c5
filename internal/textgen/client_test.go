package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTextGenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerateReturnsTextAndSendsToken(t *testing.T) {
	var gotAuth string
	var gotPrompt string
	server := newTextGenServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var request generateRequest
		_ = json.NewDecoder(r.Body).Decode(&request)
		gotPrompt = request.Prompt
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  hello  "}`))
	})

	client := NewClient(Options{URL: server.URL, Token: "secret"}, nil, nil)
	text, err := client.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
	if gotAuth != "Bearer secret" || gotPrompt != "say hello" {
		t.Fatalf("unexpected request auth=%q prompt=%q", gotAuth, gotPrompt)
	}
}

func TestGenerateServesRepeatsFromCache(t *testing.T) {
	var calls atomic.Int32
	server := newTextGenServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"text":"cached answer"}`))
	})

	cache, err := NewRistrettoCache(100, time.Minute)
	if err != nil {
		t.Fatalf("NewRistrettoCache() unexpected error: %v", err)
	}
	defer cache.Close()

	client := NewClient(Options{URL: server.URL}, cache, nil)
	for loopIndex := 0; loopIndex < 3; loopIndex++ {
		if _, err := client.Generate(context.Background(), "same prompt"); err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}

	if _, err := client.Generate(context.Background(), "same prompt, different tail"); err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected a distinct prompt to miss the cache, got %d calls", got)
	}
}

func TestGenerateFailsOnUpstreamError(t *testing.T) {
	server := newTextGenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient(Options{URL: server.URL}, nil, nil)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for upstream 502")
	}
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	server := newTextGenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	})

	client := NewClient(Options{URL: server.URL}, nil, nil)
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := newTextGenServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"text":"late"}`))
	})
	defer close(release)

	client := NewClient(Options{URL: server.URL, Timeout: 100 * time.Millisecond}, nil, nil)
	started := time.Now()
	if _, err := client.Generate(context.Background(), "slow"); err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("expected bounded wait, took %s", elapsed)
	}
}

func TestGenerateDisabledWithoutURL(t *testing.T) {
	client := NewClient(Options{}, nil, nil)
	if client.Enabled() {
		t.Fatalf("expected client without url to be disabled")
	}
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	client := NewClient(Options{URL: "http://127.0.0.1:1"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPromptKeyUsesWholePrompt(t *testing.T) {
	if PromptKey("abc") == PromptKey("abcd") {
		t.Fatalf("expected different keys for different prompts")
	}
	if PromptKey("abc") != PromptKey("abc") {
		t.Fatalf("expected stable key")
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	cache := NoopCache{}
	cache.Set("key", "value")
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected noop cache to miss")
	}
}
