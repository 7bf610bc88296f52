package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultOllamaBaseURL        = "http://localhost:11434"
	defaultOllamaTextModel      = "llama3.1"
	defaultOllamaEmbeddingModel = "nomic-embed-text"
	defaultOllamaEmbeddingDim   = 768

	// Local models are slow; text generation gets a larger budget than
	// the 10s adapter default.
	defaultGenerateTimeout = 60 * time.Second
	defaultEmbedTimeout    = 30 * time.Second
)

// OllamaConfig holds connection parameters for a local Ollama server.
type OllamaConfig struct {
	BaseURL         string
	TextModel       string
	EmbeddingModel  string
	EmbeddingDim    int
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration
}

// OllamaProvider talks to Ollama's HTTP API (/api/generate, /api/embed).
type OllamaProvider struct {
	cfg    OllamaConfig
	client *http.Client
	logger *slog.Logger
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider creates a provider, applying defaults for unset fields.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = defaultOllamaTextModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultOllamaEmbeddingModel
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = defaultOllamaEmbeddingDim
	}
	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = defaultGenerateTimeout
	}
	if cfg.EmbedTimeout == 0 {
		cfg.EmbedTimeout = defaultEmbedTimeout
	}
	return &OllamaProvider{
		cfg: cfg,
		// No client-level timeout: per-call context deadlines control
		// cancellation so callers can set their own budgets.
		client: &http.Client{},
		logger: slog.Default().With("component", "ollama-provider"),
	}
}

// ProviderID implements Provider.
func (p *OllamaProvider) ProviderID() string { return "ollama" }

// EmbeddingDimension implements Provider.
func (p *OllamaProvider) EmbeddingDimension() int { return p.cfg.EmbeddingDim }

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateText implements Provider.
func (p *OllamaProvider) GenerateText(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid generation config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
	defer cancel()

	reqBody := ollamaGenerateRequest{
		Model:  p.cfg.TextModel,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": cfg.Temperature,
			"num_predict": cfg.MaxTokens,
		},
	}

	var resp ollamaGenerateResponse
	if err := p.post(ctx, "/api/generate", reqBody, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", ErrEmptyResponse
	}
	return resp.Response, nil
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// GenerateEmbedding implements Provider.
func (p *OllamaProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// GenerateEmbeddings implements Provider.
func (p *OllamaProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
	defer cancel()

	var resp ollamaEmbedResponse
	if err := p.post(ctx, "/api/embed", ollamaEmbedRequest{Model: p.cfg.EmbeddingModel, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (p *OllamaProvider) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ollama %s returned HTTP %d: %s", path, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ollama response: %w", err)
	}
	return nil
}
