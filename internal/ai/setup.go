package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/pkg/ollama"
)

// NewAdvisorFromConfig builds the advisor the service runs with: an
// Ollama-backed engine when the engine is enabled, heuristics otherwise. An
// unreachable Ollama is logged and not fatal; requests fall back until it
// comes up. The returned function releases the client.
func NewAdvisorFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Advisor, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	if !cfg.EngineConfig.Enabled {
		logger.Info("ai engine disabled, using heuristics")
		return NewAdvisor(nil, logger), noop, nil
	}

	ollama.SetLogger(logger)
	client, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		return nil, noop, fmt.Errorf("create ollama client: %w", err)
	}
	engine, err := NewEngine(client, cfg.EngineConfig)
	if err != nil {
		_ = client.Close()
		return nil, noop, fmt.Errorf("create ai engine: %w", err)
	}

	ok, err := client.HasModel(ctx, cfg.EngineConfig.Model)
	switch {
	case err != nil:
		logger.Warn("ollama unreachable, requests will fall back until it is up", slog.String("base_url", cfg.Ollama.BaseURL), slog.Any("err", err))
	case !ok:
		logger.Warn("model not pulled in ollama", slog.String("model", cfg.EngineConfig.Model))
	default:
		logger.Info("ai engine ready", slog.String("model", cfg.EngineConfig.Model))
	}

	return NewAdvisor(engine, logger), client.Close, nil
}
