package generator

import (
	"fmt"
	"strings"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

const systemInstruction = `You are an experienced site reliability engineer assisting an on-call operator.
Produce a concise, ordered troubleshooting checklist for the alert below.
Prioritize safety: prefer read-only diagnostic steps before mutating ones,
and call out any step that could impact production traffic.
Respond either as a JSON object {"summary": ..., "steps": [{"order", "instruction", "rationale", "priority", "commands"}]}
or as a numbered list of steps, one per line.`

const noChunksSentinel = "No matching runbook excerpts were found. Fall back on general operational best practices for this class of alert."

// BuildPrompt assembles the three-section generation prompt: system
// instruction, alert context, and retrieved runbook excerpts.
func BuildPrompt(ec models.EnrichedContext, chunks []models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\n## Alert Context\n")
	fmt.Fprintf(&b, "Title: %s\n", ec.Alert.Title)
	fmt.Fprintf(&b, "Severity: %s\n", ec.Alert.Severity)
	if ec.Alert.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", ec.Alert.Message)
	}
	if ec.Resource != nil {
		fmt.Fprintf(&b, "Resource: %s\n", valueOrNA(ec.Resource.DisplayName))
		fmt.Fprintf(&b, "Shape: %s\n", valueOrNA(ec.Resource.Shape))
	} else {
		b.WriteString("Resource: N/A\nShape: N/A\n")
	}
	writeSignals(&b, ec)

	b.WriteString("\n## Runbook Excerpts\n")
	if len(chunks) == 0 {
		b.WriteString(noChunksSentinel)
		b.WriteString("\n")
	}
	for _, rc := range chunks {
		fmt.Fprintf(&b, "\n--- %s — %s ---\n%s\n", rc.Chunk.RunbookPath, rc.Chunk.SectionTitle, rc.Chunk.Content)
	}
	return b.String()
}

// writeSignals appends a compact view of recent metrics and logs. The model
// sees at most a handful of each; enrichment already bounds the lookback.
func writeSignals(b *strings.Builder, ec models.EnrichedContext) {
	const maxSignals = 5
	if len(ec.RecentMetrics) > 0 {
		b.WriteString("Recent metrics:\n")
		for i, m := range ec.RecentMetrics {
			if i == maxSignals {
				break
			}
			fmt.Fprintf(b, "  %s=%.2f%s at %s\n", m.Name, m.Value, m.Unit, m.Timestamp.UTC().Format("15:04:05"))
		}
	}
	if len(ec.RecentLogs) > 0 {
		b.WriteString("Recent logs:\n")
		for i, l := range ec.RecentLogs {
			if i == maxSignals {
				break
			}
			fmt.Fprintf(b, "  [%s] %s\n", l.Level, l.Message)
		}
	}
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
