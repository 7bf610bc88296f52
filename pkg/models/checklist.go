package models

import "time"

// Priority ranks a checklist step.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ChecklistStep is one actionable item in a generated checklist.
type ChecklistStep struct {
	Order         int      `json:"order"`
	Instruction   string   `json:"instruction"`
	Rationale     string   `json:"rationale,omitempty"`
	CurrentValue  string   `json:"currentValue,omitempty"`
	ExpectedValue string   `json:"expectedValue,omitempty"`
	Priority      Priority `json:"priority"`
	Commands      []string `json:"commands,omitempty"`
}

// DynamicChecklist is the pipeline's end product: an ordered troubleshooting
// checklist synthesized for one alert.
type DynamicChecklist struct {
	AlertID        string          `json:"alertId"`
	Summary        string          `json:"summary,omitempty"`
	Steps          []ChecklistStep `json:"steps"`
	SourceRunbooks []string        `json:"sourceRunbooks"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	LLMProviderID  string          `json:"llmProviderId"`
}
