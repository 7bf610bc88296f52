package llm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/config"
)

func TestStubProvider_EmbeddingsAreDeterministic(t *testing.T) {
	a := NewStubProvider(8)
	b := NewStubProvider(8)
	ctx := context.Background()

	v1, err := a.GenerateEmbedding(ctx, "some text")
	require.NoError(t, err)
	v2, err := b.GenerateEmbedding(ctx, "some text")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
}

func TestStubProvider_DifferentTextsDiffer(t *testing.T) {
	s := NewStubProvider(8)
	ctx := context.Background()

	v1, err := s.GenerateEmbedding(ctx, "alpha")
	require.NoError(t, err)
	v2, err := s.GenerateEmbedding(ctx, "beta")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestStubProvider_EmbeddingsAreUnitNorm(t *testing.T) {
	s := NewStubProvider(16)
	vec, err := s.GenerateEmbedding(context.Background(), "normalize me")
	require.NoError(t, err)
	require.Len(t, vec, 16)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestStubProvider_DefaultDimension(t *testing.T) {
	assert.Equal(t, 8, NewStubProvider(0).EmbeddingDimension())
	assert.Equal(t, 4, NewStubProvider(4).EmbeddingDimension())
}

func TestStubProvider_QueuedResponsesFIFO(t *testing.T) {
	s := NewStubProvider(8)
	s.QueueResponse("first")
	s.QueueResponse("second")
	cfg := GenerationConfig{Temperature: 0.5, MaxTokens: 100}
	ctx := context.Background()

	r1, err := s.GenerateText(ctx, "p1", cfg)
	require.NoError(t, err)
	r2, err := s.GenerateText(ctx, "p2", cfg)
	require.NoError(t, err)
	r3, err := s.GenerateText(ctx, "p3", cfg)
	require.NoError(t, err)

	assert.Equal(t, "first", r1)
	assert.Equal(t, "second", r2)
	assert.Contains(t, r3, "Step 1:")
	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Prompts())
}

func TestStubProvider_RejectsInvalidGenerationConfig(t *testing.T) {
	s := NewStubProvider(8)
	ctx := context.Background()

	_, err := s.GenerateText(ctx, "p", GenerationConfig{Temperature: 1.5, MaxTokens: 10})
	assert.Error(t, err)

	_, err = s.GenerateText(ctx, "p", GenerationConfig{Temperature: 0.5, MaxTokens: 0})
	assert.Error(t, err)
}

func TestGenerationConfig_Validate(t *testing.T) {
	assert.NoError(t, GenerationConfig{Temperature: 0, MaxTokens: 1}.Validate())
	assert.NoError(t, GenerationConfig{Temperature: 1, MaxTokens: 1000}.Validate())
	assert.Error(t, GenerationConfig{Temperature: -0.1, MaxTokens: 10}.Validate())
	assert.Error(t, GenerationConfig{Temperature: 1.1, MaxTokens: 10}.Validate())
	assert.Error(t, GenerationConfig{Temperature: 0.5, MaxTokens: -1}.Validate())
}

func TestNewProvider_Selection(t *testing.T) {
	stub, err := NewProvider(config.LLMConfig{Provider: "stub", Stub: config.StubSettings{EmbeddingDim: 4}})
	require.NoError(t, err)
	assert.Equal(t, "stub", stub.ProviderID())
	assert.Equal(t, 4, stub.EmbeddingDimension())

	ollama, err := NewProvider(config.LLMConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", ollama.ProviderID())

	_, err = NewProvider(config.LLMConfig{Provider: "nope"})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}
