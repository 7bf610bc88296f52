package generator

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

const summaryMaxLen = 200

// parsedResponse is the structured form recovered from a model response.
type parsedResponse struct {
	summary string
	steps   []models.ChecklistStep
}

// markdown step markers: "Step N:", "- ", "* ", "N." at line start.
var (
	stepPrefixRe   = regexp.MustCompile(`^[Ss]tep\s+(\d+)\s*[:.]\s*(.+)$`)
	numberedItemRe = regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`)
)

// parseResponse recovers steps from a model response, trying the strict JSON
// dialect first and falling back to the Markdown list dialect. It never
// fails: when neither dialect yields steps, a single-step fallback checklist
// explains that structured output could not be recovered.
func parseResponse(response string) parsedResponse {
	if parsed, ok := parseJSONResponse(response); ok {
		return parsed
	}
	if parsed, ok := parseMarkdownResponse(response); ok {
		return parsed
	}
	return parsedResponse{
		summary: firstLineSummary(response),
		steps: []models.ChecklistStep{{
			Order:       1,
			Instruction: "Review the model response manually: structured checklist output could not be recovered",
			Rationale:   "The language model reply matched neither the JSON nor the Markdown checklist format",
			Priority:    models.PriorityMedium,
		}},
	}
}

type jsonChecklist struct {
	Summary string     `json:"summary"`
	Steps   []jsonStep `json:"steps"`
}

type jsonStep struct {
	Order         int      `json:"order"`
	Instruction   string   `json:"instruction"`
	Rationale     string   `json:"rationale"`
	CurrentValue  string   `json:"currentValue"`
	ExpectedValue string   `json:"expectedValue"`
	Priority      string   `json:"priority"`
	Commands      []string `json:"commands"`
}

func parseJSONResponse(response string) (parsedResponse, bool) {
	// Models often wrap JSON in code fences or prose; parse the outermost
	// object literal.
	text := strings.TrimSpace(response)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return parsedResponse{}, false
	}

	var doc jsonChecklist
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return parsedResponse{}, false
	}
	if len(doc.Steps) == 0 {
		return parsedResponse{}, false
	}

	steps := make([]models.ChecklistStep, 0, len(doc.Steps))
	for i, s := range doc.Steps {
		if strings.TrimSpace(s.Instruction) == "" {
			continue
		}
		order := s.Order
		if order <= 0 {
			order = i + 1
		}
		steps = append(steps, models.ChecklistStep{
			Order:         order,
			Instruction:   strings.TrimSpace(s.Instruction),
			Rationale:     s.Rationale,
			CurrentValue:  s.CurrentValue,
			ExpectedValue: s.ExpectedValue,
			Priority:      parsePriority(s.Priority),
			Commands:      s.Commands,
		})
	}
	if len(steps) == 0 {
		return parsedResponse{}, false
	}

	summary := doc.Summary
	if summary == "" {
		summary = firstLineSummary(response)
	}
	return parsedResponse{summary: summary, steps: steps}, true
}

func parseMarkdownResponse(response string) (parsedResponse, bool) {
	var steps []models.ChecklistStep
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		instruction := ""
		switch {
		case stepPrefixRe.MatchString(line):
			instruction = stepPrefixRe.FindStringSubmatch(line)[2]
		case strings.HasPrefix(line, "- "):
			instruction = strings.TrimPrefix(line, "- ")
		case strings.HasPrefix(line, "* "):
			instruction = strings.TrimPrefix(line, "* ")
		case numberedItemRe.MatchString(line):
			instruction = numberedItemRe.FindStringSubmatch(line)[2]
		}
		instruction = strings.TrimSpace(instruction)
		if instruction == "" {
			continue
		}
		steps = append(steps, models.ChecklistStep{
			Order:       len(steps) + 1,
			Instruction: instruction,
			Priority:    markdownPriority(instruction),
		})
	}
	if len(steps) == 0 {
		return parsedResponse{}, false
	}
	return parsedResponse{summary: firstLineSummary(response), steps: steps}, true
}

// markdownPriority marks urgent-sounding instructions HIGH; everything else
// defaults to MEDIUM.
func markdownPriority(instruction string) models.Priority {
	lower := strings.ToLower(instruction)
	if strings.Contains(lower, "urgent") || strings.Contains(lower, "critical") {
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

func parsePriority(raw string) models.Priority {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGH":
		return models.PriorityHigh
	case "LOW":
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

// firstLineSummary returns the first non-empty line, truncated to 200
// bytes with an ellipsis. The cut backs up to a rune boundary so a
// multibyte character straddling the limit is never split.
func firstLineSummary(response string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > summaryMaxLen {
			cut := summaryMaxLen
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			return line[:cut] + "…"
		}
		return line
	}
	return ""
}
