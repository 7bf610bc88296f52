// Package models defines the domain records that flow through the
// alert-to-checklist pipeline. Records are immutable after construction;
// constructors copy their collection inputs and accessors return copies.
package models

import (
	"encoding/json"
	"time"
)

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// KnownSeverities lists the accepted severity values, in display order.
var KnownSeverities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// ValidSeverity reports whether s is one of the known severities.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Alert is the canonical ingress record. Provider-specific payloads are
// normalized to this shape before entering the pipeline.
type Alert struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Message       string            `json:"message,omitempty"`
	Severity      Severity          `json:"severity"`
	SourceService string            `json:"sourceService,omitempty"`
	Dimensions    map[string]string `json:"dimensions"`
	Labels        map[string]string `json:"labels"`
	Timestamp     time.Time         `json:"timestamp"`
	RawPayload    json.RawMessage   `json:"rawPayload,omitempty"`
}

// NewAlert constructs an Alert, copying dimensions and labels so later
// mutation of the caller's maps cannot leak in. Nil maps become empty maps.
func NewAlert(id, title, message string, severity Severity, sourceService string,
	dimensions, labels map[string]string, ts time.Time, raw json.RawMessage) Alert {
	return Alert{
		ID:            id,
		Title:         title,
		Message:       message,
		Severity:      severity,
		SourceService: sourceService,
		Dimensions:    copyStringMap(dimensions),
		Labels:        copyStringMap(labels),
		Timestamp:     ts,
		RawPayload:    raw,
	}
}

// ResourceID resolves the alert's target resource id from dimensions.
// "resourceId" wins; "instanceId" is the fallback. Empty when neither is set.
func (a Alert) ResourceID() string {
	if id := a.Dimensions["resourceId"]; id != "" {
		return id
	}
	return a.Dimensions["instanceId"]
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
