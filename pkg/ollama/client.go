package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
)

var ErrCircuitOpen = errors.New("ollama circuit open")

// Client wraps the Ollama API client and adds retries, timeout, and circuit breaker.
type Client struct {
	api    *api.Client
	cfg    Config
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32
}

// GenerateResult is a typed representation of a model response.
type GenerateResult struct {
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw"`
	Meta map[string]any  `json:"meta,omitempty"`
}

// GenerateOption customizes a single Generate call.
type GenerateOption func(*api.GenerateRequest)

// WithSystem sets the system prompt.
func WithSystem(system string) GenerateOption {
	return func(r *api.GenerateRequest) { r.System = system }
}

// WithJSONFormat asks the model for a JSON answer. A nil schema requests
// free-form JSON; otherwise the schema constrains the output.
func WithJSONFormat(schema json.RawMessage) GenerateOption {
	return func(r *api.GenerateRequest) {
		if len(schema) == 0 {
			r.Format = json.RawMessage(`"json"`)
			return
		}
		r.Format = schema
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(r *api.GenerateRequest) {
		if r.Options == nil {
			r.Options = map[string]any{}
		}
		r.Options["temperature"] = t
	}
}

// NewClient creates a new Ollama client wrapper. Zero config fields take
// their DefaultConfig values.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg = cfg.WithDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		api:    api.NewClient(u, httpClient),
		cfg:    cfg,
		client: httpClient,
	}
	logger.Debug("ollama: client created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(cfg Config) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// half-open: let one request through
	atomic.StoreInt32(&c.failures, 0)
	return false
}

// Close closes idle connections on the underlying transport when supported.
// Close is idempotent.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
			logger.Debug("ollama: idle connections closed")
		}
	}
	return nil
}

// package-level logger for pkg/ollama; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/ollama. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt32(&c.failures, 0)
}

// Health checks that the Ollama instance answers and has at least one model.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	models, err := c.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(models) == 0 {
		c.recordFailure()
		return fmt.Errorf("health check failed: no models returned")
	}
	return nil
}

// ModelInfo is a lightweight model descriptor returned by ListModels.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModels returns the locally installed models (GET /api/tags).
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if c.isCircuitOpen() {
		return nil, ErrCircuitOpen
	}

	resp, err := c.api.List(ctx)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("list models: %w", err)
	}

	out := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		out = append(out, ModelInfo{Name: name, Size: m.Size, ModifiedAt: m.ModifiedAt})
	}

	c.recordSuccess()
	return out, nil
}

// HasModel reports whether name is installed. A name without a tag matches
// any tag of that model.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m.Name == name || (!strings.Contains(name, ":") && strings.HasPrefix(m.Name, name+":")) {
			return true, nil
		}
	}
	return false, nil
}

// Generate sends a prompt to the model and returns the concatenated response
// text. Failed attempts are retried with linear backoff; each attempt is
// bounded by the configured timeout.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts ...GenerateOption) (GenerateResult, error) {
	var (
		lastErr error
		empty   GenerateResult
	)
	if c.isCircuitOpen() {
		return empty, ErrCircuitOpen
	}

	stream := false
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		req := &api.GenerateRequest{Model: model, Prompt: prompt, Stream: &stream}
		for _, opt := range opts {
			opt(req)
		}

		var (
			text  strings.Builder
			final api.GenerateResponse
		)
		ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		start := time.Now()
		err := c.api.Generate(ctxReq, req, func(r api.GenerateResponse) error {
			text.WriteString(r.Response)
			final = r
			return nil
		})
		cancel()
		latency := time.Since(start)

		if err == nil {
			c.recordSuccess()
			raw, _ := json.Marshal(final)
			meta := map[string]any{"model": model, "latency_ms": latency.Milliseconds(), "attempts": attempt + 1}
			if final.DoneReason != "" {
				meta["done_reason"] = final.DoneReason
			}
			logger.Debug("ollama: generate ok", slog.String("model", model), slog.Duration("latency", latency))
			return GenerateResult{Text: text.String(), Raw: raw, Meta: meta}, nil
		}

		lastErr = err
		c.recordFailure()
		logger.Warn("ollama: generate failed", slog.String("model", model), slog.Int("attempt", attempt+1), slog.Any("err", err))

		if attempt == c.cfg.Retries {
			break
		}
		if c.isCircuitOpen() {
			return empty, ErrCircuitOpen
		}
		select {
		case <-ctx.Done():
			return empty, fmt.Errorf("generate canceled: %w", ctx.Err())
		case <-time.After(c.cfg.Backoff * time.Duration(attempt+1)):
		}
	}

	return empty, fmt.Errorf("generate failed after retries: %w", lastErr)
}
