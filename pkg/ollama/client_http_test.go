package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/campus/pkg/ollama"
)

func tagsHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/tags" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, srv *httptest.Server, cfg ollama.Config) *ollama.Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	client, err := ollama.NewClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_ListModelsAndHealth_Success(t *testing.T) {
	srv := httptest.NewServer(tagsHandler(`{"models":[{"name":"llama3.1:8b","model":"llama3.1:8b","size":42}]}`))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second})
	ctx := context.Background()

	models, err := client.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 || models[0].Name != "llama3.1:8b" || models[0].Size != 42 {
		t.Fatalf("unexpected models: %#v", models)
	}

	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}

	for name, want := range map[string]bool{"llama3.1:8b": true, "llama3.1": true, "llama3": false, "mistral": false} {
		got, err := client.HasModel(ctx, name)
		if err != nil {
			t.Fatalf("HasModel(%s): %v", name, err)
		}
		if got != want {
			t.Errorf("HasModel(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestClient_Health_NoModels_Fails(t *testing.T) {
	srv := httptest.NewServer(tagsHandler(`{"models":[]}`))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second})
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected Health to fail when no models returned")
	}
}

func TestClient_Generate_SendsOptions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/generate" {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"model":"m","response":"{\"ideas\":[]}","done":true,"done_reason":"stop"}` + "\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second})
	schema := json.RawMessage(`{"type":"object"}`)
	res, err := client.Generate(context.Background(), "m", "prompt",
		ollama.WithSystem("be brief"), ollama.WithJSONFormat(schema), ollama.WithTemperature(0.2))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != `{"ideas":[]}` {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Meta["done_reason"] != "stop" {
		t.Fatalf("unexpected meta %#v", res.Meta)
	}

	if got["system"] != "be brief" || got["prompt"] != "prompt" || got["model"] != "m" {
		t.Fatalf("unexpected request body %#v", got)
	}
	if got["stream"] != false {
		t.Fatalf("expected stream=false, got %#v", got["stream"])
	}
	if format, ok := got["format"].(map[string]any); !ok || format["type"] != "object" {
		t.Fatalf("expected schema format, got %#v", got["format"])
	}
	if opts, ok := got["options"].(map[string]any); !ok || opts["temperature"] != 0.2 {
		t.Fatalf("expected temperature option, got %#v", got["options"])
	}
}

func TestClient_Generate_Streaming_Concatenates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Content-Type", "application/x-ndjson")
			writeSequence(w, []map[string]any{
				{"response": "one ", "done": false},
				{"response": "final", "done": true},
			}, 10*time.Millisecond)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second})
	res, err := client.Generate(context.Background(), "test-model", "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != "one final" {
		t.Fatalf("unexpected Generate.Text: %q", res.Text)
	}
	if !strings.Contains(string(res.Raw), `"done":true`) {
		t.Fatalf("raw should hold the final chunk: %s", res.Raw)
	}
}

func TestClient_Generate_Non200_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second, Retries: 0})
	if _, err := client.Generate(context.Background(), "test-model", "prompt"); err == nil {
		t.Fatalf("expected Generate to fail on non-200")
	}
}

func TestClient_Generate_MalformedJSON_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{ this is : not json `))
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: 2 * time.Second, Retries: 0})
	if _, err := client.Generate(context.Background(), "test-model", "prompt"); err == nil {
		t.Fatalf("expected Generate to fail on malformed JSON")
	}
}
