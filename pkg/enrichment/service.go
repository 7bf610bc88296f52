// Package enrichment augments an alert with live context: compute metadata,
// recent metrics, and recent logs. The contract is best-effort, never abort:
// timeouts and transport errors degrade to empty results so retrieval and
// generation always have a context to work with.
package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

const (
	// DefaultLookback is how far back metrics and logs are fetched.
	DefaultLookback = 1 * time.Hour
	// DefaultAdapterTimeout bounds each individual adapter call.
	DefaultAdapterTimeout = 10 * time.Second
)

// Service assembles EnrichedContext records.
type Service struct {
	compute  cloud.ComputeMetadataAdapter
	metrics  cloud.MetricsSourceAdapter
	logs     cloud.LogSourceAdapter
	lookback time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates an enrichment service. Zero lookback/timeout use the
// defaults.
func NewService(compute cloud.ComputeMetadataAdapter, metrics cloud.MetricsSourceAdapter,
	logs cloud.LogSourceAdapter, lookback, timeout time.Duration) *Service {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Service{
		compute:  compute,
		metrics:  metrics,
		logs:     logs,
		lookback: lookback,
		timeout:  timeout,
		logger:   slog.Default().With("component", "enrichment-service"),
	}
}

// Enrich fetches metadata, metrics, and logs concurrently, each under its
// own timeout. It always returns a context; slices are empty when a fetch
// failed or the alert names no resource.
func (s *Service) Enrich(ctx context.Context, alert models.Alert) models.EnrichedContext {
	resourceID := alert.ResourceID()
	if resourceID == "" {
		s.logger.Debug("Alert has no resource dimension, skipping enrichment fetches",
			"alert_id", alert.ID)
		return models.NewEnrichedContext(alert, nil, nil, nil, nil)
	}

	var (
		wg       sync.WaitGroup
		resource *models.ResourceMetadata
		metrics  []models.MetricSnapshot
		logs     []models.LogEntry
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		md, err := s.compute.GetInstance(fetchCtx, resourceID)
		if err != nil {
			s.logger.Warn("Compute metadata fetch degraded to empty",
				"alert_id", alert.ID, "resource_id", resourceID, "error", err)
			return
		}
		resource = md
	}()
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		ms, err := s.metrics.FetchMetrics(fetchCtx, resourceID, s.lookback)
		if err != nil {
			s.logger.Warn("Metrics fetch degraded to empty",
				"alert_id", alert.ID, "resource_id", resourceID, "error", err)
			return
		}
		metrics = ms
	}()
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		ls, err := s.logs.FetchLogs(fetchCtx, resourceID, s.lookback, "")
		if err != nil {
			s.logger.Warn("Logs fetch degraded to empty",
				"alert_id", alert.ID, "resource_id", resourceID, "error", err)
			return
		}
		logs = ls
	}()
	wg.Wait()

	return models.NewEnrichedContext(alert, resource, metrics, logs, nil)
}
