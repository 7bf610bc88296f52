// Package alerts normalizes provider-specific alert payloads into the
// canonical Alert. Normalizers are tried in registration order; the first
// whose CanHandle accepts the payload wins, with the canonical JSON shape
// as the fallback.
package alerts

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// SourceAdapter recognizes and parses one provider's alert payloads.
type SourceAdapter interface {
	// SourceService tags the alerts this adapter emits (e.g.
	// "oci-monitoring", "aws-cloudwatch").
	SourceService() string
	// CanHandle sniffs whether the payload is this provider's dialect.
	CanHandle(raw json.RawMessage) bool
	// ParseAlert converts the payload to a canonical Alert.
	ParseAlert(raw json.RawMessage) (models.Alert, error)
}

// Registry holds normalizers in registration order.
type Registry struct {
	adapters []SourceAdapter
	fallback *CanonicalAdapter
	logger   *slog.Logger
}

// NewRegistry builds a registry with the given provider adapters and a
// canonical-shape fallback.
func NewRegistry(adapters ...SourceAdapter) *Registry {
	return &Registry{
		adapters: adapters,
		fallback: NewCanonicalAdapter(),
		logger:   slog.Default().With("component", "alert-normalizer"),
	}
}

// Normalize converts a raw payload into a canonical Alert using the first
// adapter that recognizes it.
func (r *Registry) Normalize(raw json.RawMessage) (models.Alert, error) {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(raw) {
			alert, err := adapter.ParseAlert(raw)
			if err != nil {
				return models.Alert{}, fmt.Errorf("normalize %s payload: %w", adapter.SourceService(), err)
			}
			r.logger.Debug("Alert normalized", "source_service", adapter.SourceService(), "alert_id", alert.ID)
			return alert, nil
		}
	}
	return r.fallback.ParseAlert(raw)
}
