// Package pipeline composes the alert-to-checklist flow: enrich, retrieve,
// generate. Stages run in strict data-dependency order; concurrency lives
// inside the stages themselves.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/enrichment"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/generator"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/retriever"
)

// ErrNilAlert is returned when ProcessAlert is handed an empty alert.
var ErrNilAlert = errors.New("alert must not be nil")

// Stage identifies the pipeline step an error originated from.
type Stage string

const (
	StageEnrich   Stage = "enrich"
	StageRetrieve Stage = "retrieve"
	StageGenerate Stage = "generate"
)

// StageError wraps a failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator runs the three-stage pipeline for one alert at a time.
type Orchestrator struct {
	enricher  *enrichment.Service
	retriever *retriever.Retriever
	generator *generator.Generator
	logger    *slog.Logger
}

// New wires an orchestrator.
func New(enricher *enrichment.Service, ret *retriever.Retriever, gen *generator.Generator) *Orchestrator {
	return &Orchestrator{
		enricher:  enricher,
		retriever: ret,
		generator: gen,
		logger:    slog.Default().With("component", "pipeline"),
	}
}

// ProcessAlert runs enrich → retrieve → generate. Cancelling ctx cancels
// whichever stage is in flight. Enrichment cannot fail (it degrades to a
// partial context); retrieval and generation errors are wrapped with their
// stage identity.
func (o *Orchestrator) ProcessAlert(ctx context.Context, alert *models.Alert, topK int) (*models.DynamicChecklist, error) {
	if alert == nil {
		return nil, ErrNilAlert
	}

	log := o.logger.With("alert_id", alert.ID)
	log.Info("Processing alert", "title", alert.Title, "severity", alert.Severity)

	ec := o.enricher.Enrich(ctx, *alert)
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageEnrich, Err: err}
	}
	log.Debug("Context enriched",
		"has_resource", ec.Resource != nil,
		"metrics", len(ec.RecentMetrics),
		"logs", len(ec.RecentLogs))

	chunks, err := o.retriever.Retrieve(ctx, ec, topK)
	if err != nil {
		return nil, &StageError{Stage: StageRetrieve, Err: err}
	}
	log.Debug("Chunks retrieved", "count", len(chunks))

	checklist, err := o.generator.Generate(ctx, ec, chunks)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}
	log.Info("Checklist generated",
		"steps", len(checklist.Steps),
		"source_runbooks", len(checklist.SourceRunbooks),
		"llm_provider", checklist.LLMProviderID)

	return checklist, nil
}
