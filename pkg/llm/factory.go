package llm

import (
	"fmt"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/config"
)

// NewProvider builds the provider selected by cfg.Provider. Configuration
// validation has already rejected unknown ids, but the default arm guards
// direct callers.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL:        cfg.Ollama.BaseURL,
			TextModel:      cfg.Ollama.TextModel,
			EmbeddingModel: cfg.Ollama.EmbeddingModel,
			EmbeddingDim:   cfg.Ollama.EmbeddingDim,
		}), nil
	case "stub":
		return NewStubProvider(cfg.Stub.EmbeddingDim), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, cfg.Provider)
	}
}
