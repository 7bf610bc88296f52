// Package generator converts an enriched context plus retrieved runbook
// chunks into a structured troubleshooting checklist via the configured
// LLM provider.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/llm"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Generator builds prompts, invokes the LLM, and parses responses.
type Generator struct {
	provider llm.Provider
	genCfg   llm.GenerationConfig
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Generator. Zero-valued cfg fields get the documented
// defaults (temperature 0.7, 1000 tokens).
func New(provider llm.Provider, cfg llm.GenerationConfig) *Generator {
	if cfg.Temperature == 0 && cfg.MaxTokens == 0 {
		cfg = llm.GenerationConfig{Temperature: 0.7, MaxTokens: 1000}
	}
	return &Generator{
		provider: provider,
		genCfg:   cfg,
		logger:   slog.Default().With("component", "checklist-generator"),
		now:      time.Now,
	}
}

// Generate produces a checklist for the context. LLM transport failures are
// fatal; unparseable model output is not — the parser degrades to a
// single-step fallback and logs at WARN.
func (g *Generator) Generate(ctx context.Context, ec models.EnrichedContext, chunks []models.RetrievedChunk) (*models.DynamicChecklist, error) {
	prompt := BuildPrompt(ec, chunks)

	response, err := g.provider.GenerateText(ctx, prompt, g.genCfg)
	if err != nil {
		return nil, fmt.Errorf("generate checklist text: %w", err)
	}

	parsed := parseResponse(response)
	if isFallback(parsed) {
		g.logger.Warn("Model response matched no known dialect, using fallback checklist",
			"alert_id", ec.Alert.ID, "response_length", len(response))
	}

	return &models.DynamicChecklist{
		AlertID:        ec.Alert.ID,
		Summary:        parsed.summary,
		Steps:          parsed.steps,
		SourceRunbooks: sourceRunbooks(chunks),
		GeneratedAt:    g.now().UTC(),
		LLMProviderID:  g.provider.ProviderID(),
	}, nil
}

func isFallback(p parsedResponse) bool {
	return len(p.steps) == 1 &&
		p.steps[0].Instruction == "Review the model response manually: structured checklist output could not be recovered"
}

// sourceRunbooks de-duplicates chunk origins in order of first appearance.
func sourceRunbooks(chunks []models.RetrievedChunk) []string {
	seen := make(map[string]bool, len(chunks))
	paths := make([]string, 0, len(chunks))
	for _, rc := range chunks {
		if !seen[rc.Chunk.RunbookPath] {
			seen[rc.Chunk.RunbookPath] = true
			paths = append(paths, rc.Chunk.RunbookPath)
		}
	}
	return paths
}
