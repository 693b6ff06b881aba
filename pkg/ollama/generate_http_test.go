package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garnizeh/campus/pkg/ollama"
)

// writeSequence writes each object as a JSON line and flushes, the way Ollama streams.
func writeSequence(w http.ResponseWriter, seq []map[string]any, delay time.Duration) {
	enc := json.NewEncoder(w)
	for i, obj := range seq {
		_ = enc.Encode(obj)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		if i < len(seq)-1 && delay > 0 {
			time.Sleep(delay)
		}
	}
}

func TestClient_Generate_Retries_Backoff_Succeeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if atomic.AddInt32(&attempts, 1) == 1 {
				http.Error(w, "temporary", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			writeSequence(w, []map[string]any{{"response": "ok", "done": true}}, 0)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second, Retries: 2, Backoff: 10 * time.Millisecond, CircuitFailureThreshold: 10})
	res, err := client.Generate(context.Background(), "m", "p")
	if err != nil {
		t.Fatalf("Generate expected success after retry, got error: %v", err)
	}
	if _, ok := res.Meta["latency_ms"]; !ok {
		t.Fatalf("expected latency_ms in meta")
	}
	if res.Meta["attempts"] != 2 {
		t.Fatalf("expected attempts=2 in meta, got %#v", res.Meta["attempts"])
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestClient_CircuitBreaker_Opens(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "permanent", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: time.Second, Backoff: time.Millisecond, CircuitFailureThreshold: 2, CircuitReset: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Generate(ctx, "m", "p")
		if err == nil || errors.Is(err, ollama.ErrCircuitOpen) {
			t.Fatalf("expected a plain failure on attempt %d, got %v", i+1, err)
		}
	}

	if _, err := client.Generate(ctx, "m", "p"); !errors.Is(err, ollama.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if _, err := client.ListModels(ctx); !errors.Is(err, ollama.ErrCircuitOpen) {
		t.Fatalf("expected ListModels to short-circuit, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected the open circuit to stop requests, got %d attempts", got)
	}
}

func TestClient_Generate_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: time.Second, Retries: 3, Backoff: time.Second, CircuitFailureThreshold: 10})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := client.Generate(ctx, "m", "p"); err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Fatalf("backoff ignored context cancellation")
	}
}
