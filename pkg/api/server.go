// Package api exposes the synthesizer's HTTP surface: alert ingress, health,
// runbook sync, and webhook management.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/alerts"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/config"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/dispatch"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/ingest"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/pipeline"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/vectorstore"
)

// Server is the HTTP front of the pipeline.
type Server struct {
	cfg          *config.Config
	registry     *alerts.Registry
	orchestrator *pipeline.Orchestrator
	dispatcher   *dispatch.Dispatcher
	ingestor     *ingest.Service
	store        vectorstore.Repository

	engine *gin.Engine
	http   *http.Server
	logger *slog.Logger

	ingestMu   sync.RWMutex
	lastIngest *ingest.Report
}

// NewServer wires the HTTP server and its routes.
func NewServer(cfg *config.Config, registry *alerts.Registry, orch *pipeline.Orchestrator,
	dispatcher *dispatch.Dispatcher, ingestor *ingest.Service, store vectorstore.Repository) *Server {
	logger := slog.Default().With("component", "api-server")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), CorrelationID(), RequestLogger(logger))

	s := &Server{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orch,
		dispatcher:   dispatcher,
		ingestor:     ingestor,
		store:        store,
		engine:       engine,
		logger:       logger,
	}

	v1 := engine.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.POST("/alerts", s.handleAlert)
	v1.POST("/runbooks/sync", s.handleRunbookSync)
	v1.GET("/webhooks", s.handleListWebhooks)
	v1.POST("/webhooks", s.handleAddWebhook)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// RecordIngestReport publishes an ingestion outcome for health reporting.
// Startup ingestion and sync requests both land here.
func (s *Server) RecordIngestReport(report *ingest.Report) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	s.lastIngest = report
}

func (s *Server) lastIngestReport() *ingest.Report {
	s.ingestMu.RLock()
	defer s.ingestMu.RUnlock()
	return s.lastIngest
}
