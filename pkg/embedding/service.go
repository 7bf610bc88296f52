// Package embedding is a narrow facade over the LLM provider's embedding
// operations, plus the deterministic context-to-query formatting the
// retriever depends on.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Service embeds texts and enriched contexts.
type Service struct {
	provider llm.Provider
}

// NewService creates an embedding service over the given provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Dimension reports the provider's embedding vector length.
func (s *Service) Dimension() int {
	return s.provider.EmbeddingDimension()
}

// Embed embeds a single text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.provider.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vec, nil
}

// EmbedBatch embeds texts in input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.provider.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch of %d: %w", len(texts), err)
	}
	return vecs, nil
}

// EmbedContext embeds the retrieval query for an enriched context.
// The query string is a pure function of the context: alert title, message,
// and — when resource metadata is present — display name and shape.
func (s *Service) EmbedContext(ctx context.Context, ec models.EnrichedContext) ([]float32, error) {
	return s.Embed(ctx, QueryText(ec))
}

// QueryText formats the deterministic retrieval query for a context.
func QueryText(ec models.EnrichedContext) string {
	var b strings.Builder
	b.WriteString(ec.Alert.Title)
	if ec.Alert.Message != "" {
		b.WriteString("\n")
		b.WriteString(ec.Alert.Message)
	}
	if ec.Resource != nil {
		if ec.Resource.DisplayName != "" {
			b.WriteString("\nresource: ")
			b.WriteString(ec.Resource.DisplayName)
		}
		if ec.Resource.Shape != "" {
			b.WriteString("\nshape: ")
			b.WriteString(ec.Resource.Shape)
		}
	}
	return b.String()
}
