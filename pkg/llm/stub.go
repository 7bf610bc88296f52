package llm

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// StubProvider is a deterministic in-process provider. It backs
// `llm.provider: stub` for dry runs and is the provider every pipeline test
// uses: embeddings are derived from an FNV hash of the text, and generated
// text is either a canned response queued by the test or a minimal
// two-step checklist.
type StubProvider struct {
	dim int

	mu        sync.Mutex
	responses []string
	prompts   []string
}

var _ Provider = (*StubProvider)(nil)

// NewStubProvider creates a stub with the given embedding dimension.
// dim <= 0 defaults to 8.
func NewStubProvider(dim int) *StubProvider {
	if dim <= 0 {
		dim = 8
	}
	return &StubProvider{dim: dim}
}

// ProviderID implements Provider.
func (s *StubProvider) ProviderID() string { return "stub" }

// EmbeddingDimension implements Provider.
func (s *StubProvider) EmbeddingDimension() int { return s.dim }

// QueueResponse appends a canned text-generation response. Responses are
// consumed in FIFO order; when the queue is empty a default checklist is
// returned.
func (s *StubProvider) QueueResponse(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, text)
}

// Prompts returns the prompts seen so far, in call order.
func (s *StubProvider) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// GenerateText implements Provider.
func (s *StubProvider) GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) > 0 {
		resp := s.responses[0]
		s.responses = s.responses[1:]
		return resp, nil
	}
	return "Step 1: Check recent metric trends for the affected resource\nStep 2: Inspect recent logs for errors", nil
}

// GenerateEmbedding implements Provider.
func (s *StubProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.embed(text), nil
}

// GenerateEmbeddings implements Provider.
func (s *StubProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.embed(t)
	}
	return out, nil
}

// embed produces a unit-norm vector that is a pure function of the text.
func (s *StubProvider) embed(text string) []float32 {
	vec := make([]float32, s.dim)
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		// Simple splitmix-style scramble per component.
		seed += 0x9e3779b97f4a7c15
		z := seed
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		v := float64(int64(z))/math.MaxInt64 + 0.25
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
