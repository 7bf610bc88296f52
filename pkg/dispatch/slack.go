package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goslack "github.com/slack-go/slack"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// slackDestination posts checklists to a Slack incoming webhook using Block
// Kit formatting.
type slackDestination struct {
	cfg models.WebhookConfig
}

func newSlackDestination(cfg models.WebhookConfig) *slackDestination {
	return &slackDestination{cfg: cfg}
}

func (s *slackDestination) Config() models.WebhookConfig { return s.cfg }

func (s *slackDestination) Send(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) models.WebhookResult {
	msg := &goslack.WebhookMessage{
		Blocks: buildSlackBlocks(checklist, alert),
	}
	if err := goslack.PostWebhookContext(ctx, s.cfg.URL, msg); err != nil {
		return failure(s.cfg.Name, fmt.Errorf("post slack webhook: %w", err))
	}
	return success(s.cfg.Name, http.StatusOK)
}

func buildSlackBlocks(checklist *models.DynamicChecklist, alert models.Alert) *goslack.Blocks {
	header := goslack.NewHeaderBlock(
		goslack.NewTextBlockObject(goslack.PlainTextType,
			fmt.Sprintf("%s %s", severityEmoji(alert.Severity), alert.Title), true, false))

	var body strings.Builder
	if checklist.Summary != "" {
		body.WriteString("*")
		body.WriteString(checklist.Summary)
		body.WriteString("*\n\n")
	}
	for _, step := range checklist.Steps {
		fmt.Fprintf(&body, "%d. %s", step.Order, step.Instruction)
		if step.Priority == models.PriorityHigh {
			body.WriteString("  *(high priority)*")
		}
		body.WriteString("\n")
	}
	if len(checklist.SourceRunbooks) > 0 {
		fmt.Fprintf(&body, "\n_Sources: %s_", strings.Join(checklist.SourceRunbooks, ", "))
	}

	section := goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, body.String(), false, false), nil, nil)

	return &goslack.Blocks{BlockSet: []goslack.Block{header, section}}
}

func severityEmoji(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return ":red_circle:"
	case models.SeverityWarning:
		return ":large_yellow_circle:"
	default:
		return ":large_blue_circle:"
	}
}
