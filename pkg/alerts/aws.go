package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// cloudWatchAlarm mirrors the CloudWatch alarm state-change document, both
// delivered directly and inside an SNS notification envelope.
type cloudWatchAlarm struct {
	AlarmName        string            `json:"AlarmName"`
	AlarmDescription string            `json:"AlarmDescription"`
	NewStateValue    string            `json:"NewStateValue"`
	NewStateReason   string            `json:"NewStateReason"`
	StateChangeTime  string            `json:"StateChangeTime"`
	Region           string            `json:"Region"`
	Trigger          cloudWatchTrigger `json:"Trigger"`
}

type cloudWatchTrigger struct {
	MetricName string                `json:"MetricName"`
	Namespace  string                `json:"Namespace"`
	Dimensions []cloudWatchDimension `json:"Dimensions"`
}

type cloudWatchDimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// snsEnvelope is the SNS notification wrapper; Message holds the alarm
// document as a JSON string.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// AWSAdapter normalizes CloudWatch alarm notifications, unwrapping the SNS
// envelope when present.
type AWSAdapter struct{}

func NewAWSAdapter() *AWSAdapter { return &AWSAdapter{} }

func (a *AWSAdapter) SourceService() string { return "aws-cloudwatch" }

func (a *AWSAdapter) CanHandle(raw json.RawMessage) bool {
	alarm, err := unwrapCloudWatch(raw)
	return err == nil && alarm.AlarmName != ""
}

func (a *AWSAdapter) ParseAlert(raw json.RawMessage) (models.Alert, error) {
	alarm, err := unwrapCloudWatch(raw)
	if err != nil {
		return models.Alert{}, fmt.Errorf("decode cloudwatch alarm: %w", err)
	}

	dimensions := map[string]string{}
	for _, d := range alarm.Trigger.Dimensions {
		// CloudWatch spells the instance dimension "InstanceId".
		if d.Name == "InstanceId" {
			dimensions["instanceId"] = d.Value
			continue
		}
		dimensions[d.Name] = d.Value
	}

	labels := map[string]string{}
	if alarm.Trigger.MetricName != "" {
		labels["metricName"] = alarm.Trigger.MetricName
	}
	if alarm.Trigger.Namespace != "" {
		labels["namespace"] = alarm.Trigger.Namespace
	}
	if alarm.Region != "" {
		labels["region"] = alarm.Region
	}

	ts := time.Now().UTC()
	if alarm.StateChangeTime != "" {
		if parsed, err := parseCloudWatchTime(alarm.StateChangeTime); err == nil {
			ts = parsed.UTC()
		}
	}

	message := alarm.NewStateReason
	if message == "" {
		message = alarm.AlarmDescription
	}

	return models.NewAlert(
		uuid.NewString(),
		alarm.AlarmName,
		message,
		cloudWatchSeverity(alarm.NewStateValue),
		a.SourceService(),
		dimensions,
		labels,
		ts,
		raw,
	), nil
}

func unwrapCloudWatch(raw json.RawMessage) (cloudWatchAlarm, error) {
	var envelope snsEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil &&
		envelope.Type == "Notification" && envelope.Message != "" {
		raw = json.RawMessage(envelope.Message)
	}
	var alarm cloudWatchAlarm
	if err := json.Unmarshal(raw, &alarm); err != nil {
		return cloudWatchAlarm{}, err
	}
	return alarm, nil
}

// parseCloudWatchTime accepts the alarm document's timestamp, which uses a
// "+0000" zone offset rather than RFC 3339's "Z".
func parseCloudWatchTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05.000-0700", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func cloudWatchSeverity(state string) models.Severity {
	switch state {
	case "ALARM":
		return models.SeverityCritical
	case "INSUFFICIENT_DATA":
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
