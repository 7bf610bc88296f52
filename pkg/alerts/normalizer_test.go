package alerts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

func TestCanonicalAdapter_ParsesNativeShape(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "High CPU",
		"message": "CPU above 95%",
		"severity": "critical",
		"sourceService": "custom-monitor",
		"dimensions": {"resourceId": "ocid1.instance.x"},
		"labels": {"team": "platform"},
		"timestamp": "2026-08-24T10:00:00Z"
	}`)

	alert, err := NewCanonicalAdapter().ParseAlert(raw)
	require.NoError(t, err)

	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "High CPU", alert.Title)
	assert.Equal(t, "CPU above 95%", alert.Message)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "custom-monitor", alert.SourceService)
	assert.Equal(t, "ocid1.instance.x", alert.ResourceID())
	assert.Equal(t, "platform", alert.Labels["team"])
	assert.Equal(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), alert.Timestamp)
	// The original payload survives normalization byte for byte.
	assert.Equal(t, raw, alert.RawPayload)
}

func TestCanonicalAdapter_DefaultsForOptionalFields(t *testing.T) {
	alert, err := NewCanonicalAdapter().ParseAlert(json.RawMessage(`{"title": "T", "severity": "INFO"}`))
	require.NoError(t, err)

	assert.Equal(t, "unknown", alert.SourceService)
	assert.False(t, alert.Timestamp.IsZero())
	assert.NotNil(t, alert.Dimensions)
	assert.NotNil(t, alert.Labels)
}

func TestCanonicalAdapter_MalformedJSON(t *testing.T) {
	_, err := NewCanonicalAdapter().ParseAlert(json.RawMessage(`{"title": `))
	assert.Error(t, err)
}

const ociAlarmPayload = `{
	"dedupeKey": "dk-1",
	"title": "CPU Alarm fired",
	"body": "CPU above threshold on worker-3",
	"type": "OK_TO_FIRING",
	"severity": "CRITICAL",
	"timestamp": "2026-08-24T10:00:00Z",
	"alarmMetaData": [{
		"id": "ocid1.alarm.a",
		"status": "FIRING",
		"severity": "CRITICAL",
		"namespace": "oci_computeagent",
		"query": "CpuUtilization[1m].mean() > 95",
		"dimensions": [{"resourceId": "ocid1.instance.x"}]
	}]
}`

func TestOCIAdapter_CanHandle(t *testing.T) {
	adapter := NewOCIAdapter()
	assert.True(t, adapter.CanHandle(json.RawMessage(ociAlarmPayload)))
	assert.False(t, adapter.CanHandle(json.RawMessage(`{"title": "x"}`)))
	assert.False(t, adapter.CanHandle(json.RawMessage(`not json`)))
}

func TestOCIAdapter_ParsesAlarm(t *testing.T) {
	alert, err := NewOCIAdapter().ParseAlert(json.RawMessage(ociAlarmPayload))
	require.NoError(t, err)

	assert.Equal(t, "CPU Alarm fired", alert.Title)
	assert.Equal(t, "CPU above threshold on worker-3", alert.Message)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "oci-monitoring", alert.SourceService)
	assert.Equal(t, "ocid1.instance.x", alert.ResourceID())
	assert.Equal(t, "ocid1.alarm.a", alert.Dimensions["alarmId"])
	assert.Equal(t, "oci_computeagent", alert.Labels["namespace"])
	assert.Equal(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), alert.Timestamp)
}

func TestOCIAdapter_SeverityMapping(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, ociSeverity("CRITICAL"))
	assert.Equal(t, models.SeverityCritical, ociSeverity("error"))
	assert.Equal(t, models.SeverityWarning, ociSeverity("Warning"))
	assert.Equal(t, models.SeverityInfo, ociSeverity("INFO"))
	assert.Equal(t, models.SeverityInfo, ociSeverity(""))
}

const cloudWatchAlarmDoc = `{
	"AlarmName": "cpu-high-worker",
	"AlarmDescription": "CPU too high",
	"NewStateValue": "ALARM",
	"NewStateReason": "Threshold Crossed: 1 datapoint (97.1) was greater than 95.0",
	"StateChangeTime": "2026-08-24T10:00:00.000+0000",
	"Region": "us-east-1",
	"Trigger": {
		"MetricName": "CPUUtilization",
		"Namespace": "AWS/EC2",
		"Dimensions": [{"name": "InstanceId", "value": "i-0abc123"}]
	}
}`

func TestAWSAdapter_DirectAlarmDocument(t *testing.T) {
	adapter := NewAWSAdapter()
	require.True(t, adapter.CanHandle(json.RawMessage(cloudWatchAlarmDoc)))

	alert, err := adapter.ParseAlert(json.RawMessage(cloudWatchAlarmDoc))
	require.NoError(t, err)

	assert.Equal(t, "cpu-high-worker", alert.Title)
	assert.Contains(t, alert.Message, "Threshold Crossed")
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "aws-cloudwatch", alert.SourceService)
	assert.Equal(t, "i-0abc123", alert.ResourceID())
	assert.Equal(t, "CPUUtilization", alert.Labels["metricName"])
	assert.Equal(t, "us-east-1", alert.Labels["region"])
	assert.Equal(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), alert.Timestamp.UTC())
}

func TestAWSAdapter_SNSEnvelope(t *testing.T) {
	envelope, err := json.Marshal(map[string]string{
		"Type":    "Notification",
		"Message": cloudWatchAlarmDoc,
	})
	require.NoError(t, err)

	adapter := NewAWSAdapter()
	require.True(t, adapter.CanHandle(envelope))

	alert, err := adapter.ParseAlert(envelope)
	require.NoError(t, err)
	assert.Equal(t, "cpu-high-worker", alert.Title)
	assert.Equal(t, "i-0abc123", alert.ResourceID())
	// RawPayload keeps the envelope, not the unwrapped document.
	assert.Equal(t, json.RawMessage(envelope), alert.RawPayload)
}

func TestAWSAdapter_StateSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, cloudWatchSeverity("ALARM"))
	assert.Equal(t, models.SeverityWarning, cloudWatchSeverity("INSUFFICIENT_DATA"))
	assert.Equal(t, models.SeverityInfo, cloudWatchSeverity("OK"))
}

func TestRegistry_PicksFirstMatchingAdapter(t *testing.T) {
	registry := NewRegistry(NewOCIAdapter(), NewAWSAdapter())

	oci, err := registry.Normalize(json.RawMessage(ociAlarmPayload))
	require.NoError(t, err)
	assert.Equal(t, "oci-monitoring", oci.SourceService)

	aws, err := registry.Normalize(json.RawMessage(cloudWatchAlarmDoc))
	require.NoError(t, err)
	assert.Equal(t, "aws-cloudwatch", aws.SourceService)
}

func TestRegistry_FallsBackToCanonical(t *testing.T) {
	registry := NewRegistry(NewOCIAdapter(), NewAWSAdapter())

	alert, err := registry.Normalize(json.RawMessage(`{"title": "Custom", "severity": "WARNING"}`))
	require.NoError(t, err)
	assert.Equal(t, "Custom", alert.Title)
	assert.Equal(t, models.SeverityWarning, alert.Severity)
	assert.Equal(t, "unknown", alert.SourceService)
}
