package models

import "time"

// ResourceMetadata describes the compute resource an alert targets.
// A nil *ResourceMetadata means the resource could not be resolved —
// that is a value, not an error.
type ResourceMetadata struct {
	ResourceID           string            `json:"resourceId"`
	DisplayName          string            `json:"displayName,omitempty"`
	CompartmentOrAccount string            `json:"compartmentOrAccount,omitempty"`
	Shape                string            `json:"shape,omitempty"`
	Zone                 string            `json:"zone,omitempty"`
	FreeformTags         map[string]string `json:"freeformTags,omitempty"`
	DefinedTags          map[string]string `json:"definedTags,omitempty"`
}

// MetricSnapshot is a single observed metric datapoint.
type MetricSnapshot struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace,omitempty"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LogEntry is a single log line fetched during enrichment.
type LogEntry struct {
	ID        string            `json:"id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level,omitempty"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EnrichedContext is the alert plus whatever live context enrichment could
// gather. Collections are never nil; a partial context (no resource, no
// metrics, no logs) is still a valid context.
type EnrichedContext struct {
	Alert            Alert             `json:"alert"`
	Resource         *ResourceMetadata `json:"resource,omitempty"`
	RecentMetrics    []MetricSnapshot  `json:"recentMetrics"`
	RecentLogs       []LogEntry        `json:"recentLogs"`
	CustomProperties map[string]string `json:"customProperties"`
}

// NewEnrichedContext assembles a context, copying all collection inputs.
func NewEnrichedContext(alert Alert, resource *ResourceMetadata,
	metrics []MetricSnapshot, logs []LogEntry, props map[string]string) EnrichedContext {
	ms := make([]MetricSnapshot, len(metrics))
	copy(ms, metrics)
	ls := make([]LogEntry, len(logs))
	copy(ls, logs)
	return EnrichedContext{
		Alert:            alert,
		Resource:         resource,
		RecentMetrics:    ms,
		RecentLogs:       ls,
		CustomProperties: copyStringMap(props),
	}
}
