package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// ociAlarmMessage mirrors the OCI Monitoring alarm notification shape.
type ociAlarmMessage struct {
	DedupeKey     string         `json:"dedupeKey"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	Type          string         `json:"type"`
	Severity      string         `json:"severity"`
	Timestamp     string         `json:"timestamp"`
	AlarmMetaData []ociAlarmMeta `json:"alarmMetaData"`
}

type ociAlarmMeta struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	Severity   string              `json:"severity"`
	Namespace  string              `json:"namespace"`
	Query      string              `json:"query"`
	Dimensions []map[string]string `json:"dimensions"`
}

// OCIAdapter normalizes OCI Monitoring alarm notifications.
type OCIAdapter struct{}

func NewOCIAdapter() *OCIAdapter { return &OCIAdapter{} }

func (o *OCIAdapter) SourceService() string { return "oci-monitoring" }

// CanHandle keys on the alarmMetaData array, which only OCI alarm
// notifications carry.
func (o *OCIAdapter) CanHandle(raw json.RawMessage) bool {
	var probe struct {
		AlarmMetaData []json.RawMessage `json:"alarmMetaData"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return len(probe.AlarmMetaData) > 0
}

func (o *OCIAdapter) ParseAlert(raw json.RawMessage) (models.Alert, error) {
	var msg ociAlarmMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return models.Alert{}, fmt.Errorf("decode oci alarm: %w", err)
	}

	meta := ociAlarmMeta{}
	if len(msg.AlarmMetaData) > 0 {
		meta = msg.AlarmMetaData[0]
	}

	severity := msg.Severity
	if severity == "" {
		severity = meta.Severity
	}

	dimensions := map[string]string{}
	if len(meta.Dimensions) > 0 {
		for k, v := range meta.Dimensions[0] {
			dimensions[k] = v
		}
	}
	if meta.ID != "" {
		dimensions["alarmId"] = meta.ID
	}

	labels := map[string]string{}
	if meta.Namespace != "" {
		labels["namespace"] = meta.Namespace
	}
	if meta.Query != "" {
		labels["query"] = meta.Query
	}

	ts := time.Now().UTC()
	if msg.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
			ts = parsed.UTC()
		}
	}

	return models.NewAlert(
		uuid.NewString(),
		msg.Title,
		msg.Body,
		ociSeverity(severity),
		o.SourceService(),
		dimensions,
		labels,
		ts,
		raw,
	), nil
}

// ociSeverity maps OCI alarm severities onto the canonical set.
func ociSeverity(s string) models.Severity {
	switch strings.ToUpper(s) {
	case "CRITICAL", "ERROR":
		return models.SeverityCritical
	case "WARNING":
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
