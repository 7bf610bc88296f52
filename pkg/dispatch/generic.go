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

// genericDestination POSTs the checklist as JSON to an arbitrary URL with
// optional custom headers.
type genericDestination struct {
	cfg    models.WebhookConfig
	client *http.Client
}

func newGenericDestination(cfg models.WebhookConfig) *genericDestination {
	return &genericDestination{cfg: cfg, client: &http.Client{}}
}

func (g *genericDestination) Config() models.WebhookConfig { return g.cfg }

// genericPayload is the wire shape: the checklist plus enough of the alert
// for receivers that filter on severity or title.
type genericPayload struct {
	Alert struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Severity models.Severity `json:"severity"`
	} `json:"alert"`
	Checklist *models.DynamicChecklist `json:"checklist"`
}

func (g *genericDestination) Send(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) models.WebhookResult {
	var payload genericPayload
	payload.Alert.ID = alert.ID
	payload.Alert.Title = alert.Title
	payload.Alert.Severity = alert.Severity
	payload.Checklist = checklist

	body, err := json.Marshal(payload)
	if err != nil {
		return failure(g.cfg.Name, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return failure(g.cfg.Name, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range g.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return failure(g.cfg.Name, fmt.Errorf("post webhook: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res := failure(g.cfg.Name, fmt.Errorf("webhook returned HTTP %d", resp.StatusCode))
		res.HTTPCode = resp.StatusCode
		return res
	}
	return success(g.cfg.Name, resp.StatusCode)
}
