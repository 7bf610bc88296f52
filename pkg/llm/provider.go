// Package llm defines the pluggable language-model backend and its concrete
// providers. A provider supplies both text generation (for checklist
// synthesis) and embeddings (for the vector index).
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProviderNotFound is returned by the factory for unknown provider ids.
	ErrProviderNotFound = errors.New("llm provider not found")

	// ErrEmptyResponse is returned when the model produced no output.
	ErrEmptyResponse = errors.New("llm returned empty response")
)

// GenerationConfig bounds a single text-generation call.
type GenerationConfig struct {
	Temperature float64
	MaxTokens   int
}

// Validate enforces the documented bounds: temperature in [0,1], positive
// token budget.
func (c GenerationConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature %v outside [0,1]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// Provider is the LLM capability interface. Implementations are safe for
// concurrent use after construction.
type Provider interface {
	// ProviderID identifies the backend (e.g. "ollama", "stub").
	ProviderID() string
	// GenerateText produces a completion for the prompt.
	GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
	// GenerateEmbedding embeds one text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateEmbeddings embeds a batch, preserving input order.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// EmbeddingDimension reports the vector length of the embedding model.
	EmbeddingDimension() int
}
