package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/dispatch"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/ingest"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/pipeline"
)

// syncTimeout bounds a background ingestion run started via the API.
const syncTimeout = 10 * time.Minute

// HealthStatus is the service's coarse health signal.
type HealthStatus string

const (
	HealthUp       HealthStatus = "UP"
	HealthDegraded HealthStatus = "DEGRADED"
)

type healthResponse struct {
	Status    HealthStatus   `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Checks    map[string]any `json:"checks"`
}

// handleHealth reports UP, or DEGRADED when the vector store is empty or the
// last ingestion run recorded document failures.
func (s *Server) handleHealth(c *gin.Context) {
	chunks := s.store.Count()
	status := HealthUp
	checks := map[string]any{"vectorStoreChunks": chunks}

	if chunks == 0 {
		status = HealthDegraded
		checks["reason"] = "vector store is empty"
	}
	if report := s.lastIngestReport(); report != nil {
		checks["lastIngestErrors"] = len(report.Errors)
		if len(report.Errors) > 0 {
			status = HealthDegraded
			checks["reason"] = "last ingestion run had document failures"
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// alertResponse is the generated checklist itself, with per-destination
// delivery outcomes attached.
type alertResponse struct {
	models.DynamicChecklist
	Deliveries []models.WebhookResult `json:"deliveries"`
}

// handleAlert ingests one alert and responds with the generated checklist.
// Validation rejects before any enrichment adapter or model is touched.
func (s *Server) handleAlert(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "failed to read request body", nil)
		return
	}
	if !json.Valid(body) {
		respondError(c, http.StatusBadRequest, CodeValidation, "request body is not valid JSON", nil)
		return
	}

	alert, err := s.registry.Normalize(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	if alert.Title == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "alert title is required",
			map[string]any{"field": "title"})
		return
	}
	if !models.ValidSeverity(alert.Severity) {
		respondError(c, http.StatusBadRequest, CodeValidation,
			fmt.Sprintf("unknown severity %q, allowed values: %v", alert.Severity, models.KnownSeverities),
			map[string]any{"field": "severity", "allowed": models.KnownSeverities})
		return
	}

	checklist, err := s.orchestrator.ProcessAlert(c.Request.Context(), &alert, s.cfg.Retrieval.TopK)
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}

	deliveries := s.dispatcher.Dispatch(c.Request.Context(), checklist, alert)

	c.JSON(http.StatusOK, alertResponse{DynamicChecklist: *checklist, Deliveries: deliveries})
}

// respondPipelineError maps pipeline failures onto the error taxonomy.
func (s *Server) respondPipelineError(c *gin.Context, err error) {
	var stageErr *pipeline.StageError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, CodeTimeout, err.Error(), nil)
	case errors.As(err, &stageErr) && stageErr.Stage == pipeline.StageGenerate:
		respondError(c, http.StatusBadGateway, CodeUpstream, err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
	}
}

type syncRequest struct {
	BucketName string `json:"bucketName"`
	Prefix     string `json:"prefix"`
}

type syncResponse struct {
	Status             string                 `json:"status"`
	RequestID          string                 `json:"requestId"`
	BucketName         string                 `json:"bucketName"`
	Prefix             string                 `json:"prefix,omitempty"`
	DocumentsProcessed int                    `json:"documentsProcessed"`
	Errors             []ingest.DocumentError `json:"errors"`
}

// handleRunbookSync starts a background re-ingestion and answers immediately.
// The run's outcome feeds the health endpoint.
func (s *Server) handleRunbookSync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, CodeValidation, "invalid sync request body", nil)
			return
		}
	}

	bucket := req.BucketName
	if bucket == "" {
		bucket = s.cfg.Runbooks.Bucket
	}

	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID, "bucket", bucket, "prefix", req.Prefix)
	log.Info("Runbook sync started")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		report, err := s.ingestor.IngestPrefix(ctx, bucket, req.Prefix)
		if err != nil {
			log.Error("Runbook sync failed", "error", err)
			return
		}
		s.RecordIngestReport(report)
		log.Info("Runbook sync complete",
			"chunks_stored", report.ChunksStored,
			"documents", report.Documents,
			"failed_documents", len(report.Errors))
	}()

	// The run just started, so the snapshot carries zero counts; the final
	// numbers land in the health endpoint via RecordIngestReport.
	c.JSON(http.StatusAccepted, syncResponse{
		Status:     "STARTED",
		RequestID:  requestID,
		BucketName: bucket,
		Prefix:     req.Prefix,
		Errors:     []ingest.DocumentError{},
	})
}

func (s *Server) handleListWebhooks(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.Configs())
}

// handleAddWebhook registers a destination at runtime.
func (s *Server) handleAddWebhook(c *gin.Context) {
	var cfg models.WebhookConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, "invalid webhook configuration body", nil)
		return
	}

	if cfg.Name == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "webhook name is required",
			map[string]any{"field": "name"})
		return
	}
	if cfg.URL == "" {
		respondError(c, http.StatusBadRequest, CodeValidation, "webhook url is required",
			map[string]any{"field": "url"})
		return
	}
	for _, sev := range cfg.Filter {
		if !models.ValidSeverity(sev) {
			respondError(c, http.StatusBadRequest, CodeValidation,
				fmt.Sprintf("unknown severity %q in filter, allowed values: %v", sev, models.KnownSeverities),
				map[string]any{"field": "filter", "allowed": models.KnownSeverities})
			return
		}
	}

	dest, err := dispatch.NewDestination(cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidation, err.Error(),
			map[string]any{"field": "type"})
		return
	}
	if err := s.dispatcher.Add(dest); err != nil {
		if errors.Is(err, dispatch.ErrDuplicateDestination) {
			respondError(c, http.StatusConflict, CodeDuplicate,
				fmt.Sprintf("webhook %q already registered", cfg.Name), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}

	c.JSON(http.StatusCreated, cfg)
}
