// Package dispatch fans a generated checklist out to configured
// destinations: Slack, PagerDuty, generic webhooks, and local files.
// Delivery failures are per-destination values, never dispatch failures.
package dispatch

import (
	"context"
	"fmt"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Destination delivers checklists to one configured sink.
type Destination interface {
	// Config returns the destination's configuration (name, filter, …).
	Config() models.WebhookConfig
	// Send delivers one checklist. The alert that produced the checklist
	// rides along for sinks that format severity or title.
	Send(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) models.WebhookResult
}

// NewDestination builds a Destination from its configuration.
func NewDestination(cfg models.WebhookConfig) (Destination, error) {
	switch cfg.Type {
	case models.WebhookSlack:
		return newSlackDestination(cfg), nil
	case models.WebhookPagerDuty:
		return newPagerDutyDestination(cfg), nil
	case models.WebhookGeneric:
		return newGenericDestination(cfg), nil
	case models.WebhookFile:
		return newFileDestination(cfg), nil
	default:
		return nil, fmt.Errorf("unknown webhook type %q for destination %q", cfg.Type, cfg.Name)
	}
}

func failure(name string, err error) models.WebhookResult {
	return models.WebhookResult{
		DestinationName: name,
		Status:          models.DeliveryFailure,
		Error:           err.Error(),
	}
}

func success(name string, httpCode int) models.WebhookResult {
	return models.WebhookResult{
		DestinationName: name,
		Status:          models.DeliverySuccess,
		HTTPCode:        httpCode,
	}
}
