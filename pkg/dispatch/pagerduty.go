package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

const pagerDutyEventsURL = "https://events.pagerduty.com/v2/enqueue"

// routingKeyHeader is the config header carrying the PagerDuty integration
// routing key; it goes into the event payload, not onto the wire.
const routingKeyHeader = "X-Routing-Key"

// pagerDutyDestination sends Events API v2 trigger events.
type pagerDutyDestination struct {
	cfg    models.WebhookConfig
	client *http.Client
}

func newPagerDutyDestination(cfg models.WebhookConfig) *pagerDutyDestination {
	if cfg.URL == "" {
		cfg.URL = pagerDutyEventsURL
	}
	return &pagerDutyDestination{cfg: cfg, client: &http.Client{}}
}

func (p *pagerDutyDestination) Config() models.WebhookConfig { return p.cfg }

type pagerDutyEvent struct {
	RoutingKey  string           `json:"routing_key"`
	EventAction string           `json:"event_action"`
	DedupKey    string           `json:"dedup_key,omitempty"`
	Payload     pagerDutyPayload `json:"payload"`
}

type pagerDutyPayload struct {
	Summary       string         `json:"summary"`
	Source        string         `json:"source"`
	Severity      string         `json:"severity"`
	CustomDetails map[string]any `json:"custom_details,omitempty"`
}

func (p *pagerDutyDestination) Send(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) models.WebhookResult {
	event := pagerDutyEvent{
		RoutingKey:  p.cfg.Headers[routingKeyHeader],
		EventAction: "trigger",
		DedupKey:    alert.ID,
		Payload: pagerDutyPayload{
			Summary:  alert.Title,
			Source:   alert.SourceService,
			Severity: pagerDutySeverity(alert.Severity),
			CustomDetails: map[string]any{
				"checklist": checklist,
			},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		return failure(p.cfg.Name, fmt.Errorf("marshal event: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return failure(p.cfg.Name, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return failure(p.cfg.Name, fmt.Errorf("send event: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res := failure(p.cfg.Name, fmt.Errorf("pagerduty returned HTTP %d", resp.StatusCode))
		res.HTTPCode = resp.StatusCode
		return res
	}
	return success(p.cfg.Name, resp.StatusCode)
}

func pagerDutySeverity(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return "critical"
	case models.SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}
